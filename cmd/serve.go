package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/ai/gemini"
	"github.com/humboldtjobs/humboldt-jobs/internal/assistant"
	"github.com/humboldtjobs/humboldt-jobs/internal/cache"
	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
	"github.com/humboldtjobs/humboldt-jobs/internal/logger"
	"github.com/humboldtjobs/humboldt-jobs/internal/ratelimit"
	"github.com/humboldtjobs/humboldt-jobs/internal/secrets"
	"github.com/humboldtjobs/humboldt-jobs/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with the chat assistant and the browse API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting humboldt-jobs", zap.String("version", version))

	store, err := jobstore.Open(config.Database.Path, logger)
	if err != nil {
		logger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	responses := cache.New(config.Cache.Capacity, config.Cache.TTL)
	limiter := ratelimit.New(config.Server.DailyRequestLimit)

	generator := buildGenerator(ctx, config.AI.Gemini, logger)
	bot := assistant.New(generator, store, responses, logger)

	srv := server.New(bot, store, limiter, config.Server.Port, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}

// unconfiguredGenerator fails every chat call with the credential error so
// the browse API stays up when the Gemini key is missing.
type unconfiguredGenerator struct {
	err error
}

func (u *unconfiguredGenerator) Chat(context.Context, string, []gemini.Turn, string) (string, error) {
	return "", u.err
}

func buildGenerator(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) assistant.ChatGenerator {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
	})
	if err != nil {
		log.Warn("chat generation unavailable",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
		return &unconfiguredGenerator{err: fmt.Errorf("gemini credential missing: %w", err)}
	}

	genLogger := logger.WithAIFields(log, "gemini", cfg.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, cfg.Timeout, genLogger)
	if err != nil {
		log.Warn("chat generation unavailable", zap.Error(err))
		return &unconfiguredGenerator{err: errors.New("gemini client unavailable")}
	}

	return generator
}
