package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/ai/gemini"
	"github.com/humboldtjobs/humboldt-jobs/internal/assistant"
	"github.com/humboldtjobs/humboldt-jobs/internal/cache"
	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
)

const (
	promptTypeOwn = "Type my own message"
	promptExit    = "Exit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the job assistant from the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat() {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	store, err := jobstore.Open(config.Database.Path, logger)
	if err != nil {
		logger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	generator := buildGenerator(ctx, config.AI.Gemini, logger)
	bot := assistant.New(generator, store, cache.New(config.Cache.Capacity, config.Cache.TTL), logger)

	var history []gemini.Turn
	var shownTitles []string

	query, err := readQuery("What kind of job are you looking for?")
	if err != nil {
		return
	}

	for {
		result, err := bot.Answer(ctx, &assistant.Request{
			Query:          query,
			History:        history,
			ShownJobTitles: shownTitles,
		})
		if err != nil {
			logger.Fatal("assistant failed", zap.Error(err))
		}

		fmt.Println()
		fmt.Println(result.Response)
		printJobs(result.Jobs)

		history = append(history,
			gemini.Turn{Role: "user", Content: query},
			gemini.Turn{Role: "assistant", Content: result.Response},
		)
		for _, job := range result.Jobs {
			shownTitles = append(shownTitles, job.Title)
		}

		query, err = nextQuery(result.QuickActions)
		if err != nil {
			return
		}
	}
}

func printJobs(jobs []*jobstore.Job) {
	if len(jobs) == 0 {
		return
	}

	fmt.Println()
	for i, job := range jobs {
		line := fmt.Sprintf("%d. %s", i+1, job.Title)
		if job.Employer != "" {
			line += " / " + job.Employer
		}
		if job.SalaryText != "" {
			line += " / " + job.SalaryText
		}
		fmt.Println(line)
		if job.URL != "" {
			fmt.Println("   " + job.URL)
		}
	}
}

// nextQuery offers the quick replies from the last answer, with free-text
// entry and exit as fallbacks.
func nextQuery(actions []assistant.QuickAction) (string, error) {
	if len(actions) == 0 {
		return readQuery("Your message")
	}

	items := make([]string, 0, len(actions)+2)
	for _, action := range actions {
		items = append(items, action.Label)
	}
	items = append(items, promptTypeOwn, promptExit)

	selectPrompt := promptui.Select{
		Label: "Choose a reply",
		Items: items,
	}

	_, selected, err := selectPrompt.Run()
	if err != nil {
		return "", err
	}

	switch selected {
	case promptExit:
		return "", errors.New("exit requested")
	case promptTypeOwn:
		return readQuery("Your message")
	default:
		for _, action := range actions {
			if action.Label == selected {
				return action.Query, nil
			}
		}
		return selected, nil
	}
}

func readQuery(label string) (string, error) {
	textPrompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("message must not be empty")
			}
			return nil
		},
	}

	query, err := textPrompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}
