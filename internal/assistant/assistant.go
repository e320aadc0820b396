// Package assistant orchestrates the chat pipeline: moderation, cache
// lookup, job selection, the language-model call, and response
// post-processing.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/ai/gemini"
	"github.com/humboldtjobs/humboldt-jobs/internal/cache"
	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
	"github.com/humboldtjobs/humboldt-jobs/internal/logger"
	"github.com/humboldtjobs/humboldt-jobs/internal/moderation"
	"github.com/humboldtjobs/humboldt-jobs/internal/ranking"
)

//go:embed prompt.md
var systemPrompt string

const (
	// DefaultJobLimit bounds how many postings one reply may carry.
	DefaultJobLimit = 5

	maxLogPreview = 200
)

// ChatGenerator produces one reply from a system instruction, the prior
// turns, and the new message.
type ChatGenerator interface {
	Chat(ctx context.Context, system string, history []gemini.Turn, message string) (string, error)
}

type jobSource interface {
	Snapshot(ctx context.Context) (*jobstore.Jobs, error)
}

// QuickAction is a suggested follow-up query surfaced alongside a reply.
type QuickAction struct {
	Label string `json:"label"`
	Query string `json:"query"`
}

// Request is one chat turn from a client. History and ShownJobTitles carry
// the whole conversation state; nothing is kept server-side between turns.
type Request struct {
	Query          string
	History        []gemini.Turn
	ShownJobTitles []string
}

// Result is the structured outcome of one chat turn.
type Result struct {
	Response     string
	Jobs         []*jobstore.Job
	QuickActions []QuickAction
	TotalMatches int
	Cached       bool
	Moderated    bool
}

// Assistant answers job-search queries. Jobs are attached to a reply only
// after the model signals that all profiling slots are filled.
type Assistant struct {
	generator ChatGenerator
	jobs      jobSource
	selector  *ranking.Selector
	cache     *cache.Cache
	guard     *moderation.Filter
	limit     int
	logger    *zap.Logger
}

func New(generator ChatGenerator, jobs jobSource, responses *cache.Cache, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	if responses == nil {
		responses = cache.New(cache.DefaultCapacity, cache.DefaultTTL)
	}

	return &Assistant{
		generator: generator,
		jobs:      jobs,
		selector:  ranking.NewSelector(log),
		cache:     responses,
		guard:     moderation.New(),
		limit:     DefaultJobLimit,
		logger:    log,
	}
}

// Answer runs the full pipeline for one query. An error means the
// language-model call failed; every other condition degrades to a normal
// result.
func (a *Assistant) Answer(ctx context.Context, req *Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)

	if a.guard.Blocked(query) {
		a.logger.Info("query blocked by moderation")
		return &Result{
			Response:  a.guard.RedirectMessage(),
			Moderated: true,
		}, nil
	}

	// Replies to a conversation in progress are personalized and must not
	// be shared across sessions.
	useCache := len(req.History) == 0

	var raw string
	var hit bool
	if useCache {
		raw, hit = a.cache.Get(query)
	}

	pool := a.loadJobs(ctx)
	selected, total := a.selector.Select(pool, query, a.limit, req.ShownJobTitles)

	if !hit {
		message := buildUserMessage(query, selected, total)

		a.logger.Debug("chat request",
			zap.Int("history_turns", len(req.History)),
			zap.Int("selected_jobs", len(selected)),
			zap.Int("message_length", utf8.RuneCountInString(message)),
		)

		var err error
		raw, err = a.generator.Chat(ctx, systemPrompt, req.History, message)
		if err != nil {
			return nil, fmt.Errorf("generate reply: %w", err)
		}

		a.logger.Debug("chat response",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", logger.TruncateForLog(raw, maxLogPreview)),
		)

		if useCache {
			a.cache.Put(query, raw)
		}
	}

	reply := parseReply(raw)

	result := &Result{
		Response:     reply.text,
		QuickActions: reply.quickActions,
		Cached:       hit,
	}
	if reply.showJobs {
		result.Jobs = selected
		result.TotalMatches = total
	}

	return result, nil
}

// loadJobs fetches the job snapshot, degrading to an empty pool when the
// store is unreachable so the conversation can still proceed.
func (a *Assistant) loadJobs(ctx context.Context) *jobstore.Jobs {
	if a.jobs == nil {
		return &jobstore.Jobs{}
	}

	pool, err := a.jobs.Snapshot(ctx)
	if err != nil {
		a.logger.Warn("job store unavailable, answering without job data", zap.Error(err))
		return &jobstore.Jobs{}
	}
	return pool
}

// buildUserMessage wraps the query with the postings already selected for it
// so the model can reference real titles without inventing any.
func buildUserMessage(query string, selected []*jobstore.Job, total int) string {
	var b strings.Builder

	b.WriteString("USER MESSAGE:\n")
	b.WriteString(query)
	b.WriteString("\n\nMATCHING JOBS:\n")

	if len(selected) == 0 {
		b.WriteString("No job data is available for this query.\n")
		return b.String()
	}

	for i, job := range selected {
		fmt.Fprintf(&b, "%d. %s", i+1, job.Title)
		if job.Employer != "" {
			fmt.Fprintf(&b, " at %s", job.Employer)
		}
		if job.Location != "" {
			fmt.Fprintf(&b, " (%s)", job.Location)
		}
		if job.SalaryText != "" {
			fmt.Fprintf(&b, ", %s", job.SalaryText)
		}
		b.WriteString("\n")
	}

	if total > len(selected) {
		fmt.Fprintf(&b, "...and %d more matches.\n", total-len(selected))
	}

	return b.String()
}
