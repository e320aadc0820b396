package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
	"github.com/humboldtjobs/humboldt-jobs/internal/scraper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch the configured feeds once and upsert their postings",
	Run: func(_ *cobra.Command, _ []string) {
		scrape()
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func scrape() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if len(config.Feeds) == 0 {
		logger.Fatal("no feeds configured", zap.String("hint", "add feeds to the configuration file"))
	}

	store, err := jobstore.Open(config.Database.Path, logger)
	if err != nil {
		logger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	summary, err := scraper.New(store, logger).Run(ctx, config.Feeds)
	if err != nil {
		logger.Fatal("scrape run failed", zap.Error(err))
	}

	logger.Info("scrape finished",
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("failed_feeds", summary.FailedFeeds),
	)
}
