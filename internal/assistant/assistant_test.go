package assistant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/ai/gemini"
	"github.com/humboldtjobs/humboldt-jobs/internal/cache"
	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
)

type fakeGenerator struct {
	calls       int
	lastHistory []gemini.Turn
	lastMessage string
	response    string
	err         error
}

func (f *fakeGenerator) Chat(_ context.Context, _ string, history []gemini.Turn, message string) (string, error) {
	f.calls++
	f.lastHistory = history
	f.lastMessage = message
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type staticJobs struct {
	pool *jobstore.Jobs
	err  error
}

func (s staticJobs) Snapshot(context.Context) (*jobstore.Jobs, error) {
	return s.pool, s.err
}

func educationPool() *jobstore.Jobs {
	return &jobstore.Jobs{Items: []*jobstore.Job{
		{Title: "Teaching Aide", Category: "Education", JobType: "Part-time", ExperienceLevel: "Entry"},
		{Title: "Substitute Teacher", Category: "Education", JobType: "Part-time"},
		{Title: "Park Ranger", Category: "Government"},
	}}
}

func newTestAssistant(gen *fakeGenerator, jobs jobSource) *Assistant {
	return New(gen, jobs, cache.New(10, cache.DefaultTTL), zap.NewNop())
}

func TestAnswerAttachesJobsOnSentinel(t *testing.T) {
	gen := &fakeGenerator{response: "Here is what I found.\n[SHOW_JOBS]\n[QUICK_REPLIES: Show more jobs | Start over]"}
	a := newTestAssistant(gen, staticJobs{pool: educationPool()})

	got, err := a.Answer(context.Background(), &Request{Query: "entry level education part time"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Jobs) == 0 {
		t.Fatal("expected jobs to be attached after the sentinel")
	}
	if got.TotalMatches == 0 {
		t.Fatal("expected a positive total match count")
	}
	if got.Response != "Here is what I found." {
		t.Fatalf("markup leaked into response: %q", got.Response)
	}
	if len(got.QuickActions) != 2 {
		t.Fatalf("expected 2 quick actions, got %d", len(got.QuickActions))
	}
}

func TestAnswerWithoutSentinelCarriesNoJobs(t *testing.T) {
	gen := &fakeGenerator{response: "What experience level are you at?\n[QUICK_REPLIES: Entry level | Senior]"}
	a := newTestAssistant(gen, staticJobs{pool: educationPool()})

	got, err := a.Answer(context.Background(), &Request{Query: "education jobs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Jobs) != 0 || got.TotalMatches != 0 {
		t.Fatalf("jobs must not appear before profiling completes, got %d jobs", len(got.Jobs))
	}
}

func TestAnswerCachesFirstTurnOnly(t *testing.T) {
	gen := &fakeGenerator{response: "Answer.\n[SHOW_JOBS]"}
	a := newTestAssistant(gen, staticJobs{pool: educationPool()})

	first, err := a.Answer(context.Background(), &Request{Query: "Education  Jobs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Fatal("first answer must not be cached")
	}

	// Same query modulo case and spacing hits the cache.
	second, err := a.Answer(context.Background(), &Request{Query: "education jobs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Fatal("repeat query should be served from cache")
	}
	if gen.calls != 1 {
		t.Fatalf("generator should be called once, got %d", gen.calls)
	}
	if len(second.Jobs) == 0 {
		t.Fatal("cached sentinel reply should still attach jobs")
	}

	// History makes the reply personalized; the cache is bypassed.
	history := []gemini.Turn{{Role: "user", Content: "education jobs"}}
	third, err := a.Answer(context.Background(), &Request{Query: "education jobs", History: history})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.Cached {
		t.Fatal("requests with history must bypass the cache")
	}
	if gen.calls != 2 {
		t.Fatalf("generator should be called for the history turn, got %d calls", gen.calls)
	}
}

func TestAnswerModeratedQuery(t *testing.T) {
	gen := &fakeGenerator{response: "should never be used"}
	a := newTestAssistant(gen, staticJobs{pool: educationPool()})

	got, err := a.Answer(context.Background(), &Request{Query: "fuuuck this"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Moderated {
		t.Fatal("expected moderated result")
	}
	if len(got.Jobs) != 0 || len(got.QuickActions) != 0 {
		t.Fatal("moderated result must carry no jobs or quick actions")
	}
	if gen.calls != 0 {
		t.Fatal("moderated query must never reach the generator")
	}
	if got.Response == "" {
		t.Fatal("expected a redirect message")
	}
}

func TestAnswerUpstreamFailureIsNotCached(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	a := newTestAssistant(gen, staticJobs{pool: educationPool()})

	if _, err := a.Answer(context.Background(), &Request{Query: "education jobs"}); err == nil {
		t.Fatal("expected upstream failure to surface")
	}

	if a.cache.Len() != 0 {
		t.Fatal("failed generations must not be cached")
	}
}

func TestAnswerDegradesWhenStoreUnavailable(t *testing.T) {
	gen := &fakeGenerator{response: "No data right now.\n[SHOW_JOBS]"}
	a := newTestAssistant(gen, staticJobs{err: errors.New("db locked")})

	got, err := a.Answer(context.Background(), &Request{Query: "education jobs"})
	if err != nil {
		t.Fatalf("store failure must not fail the request: %v", err)
	}
	if len(got.Jobs) != 0 {
		t.Fatalf("expected no jobs without data, got %d", len(got.Jobs))
	}
}

func TestAnswerExcludesShownTitles(t *testing.T) {
	gen := &fakeGenerator{response: "More results.\n[SHOW_JOBS]"}
	a := newTestAssistant(gen, staticJobs{pool: educationPool()})

	got, err := a.Answer(context.Background(), &Request{
		Query:          "education jobs",
		History:        []gemini.Turn{{Role: "user", Content: "hi"}},
		ShownJobTitles: []string{"teaching aide"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, job := range got.Jobs {
		if job.Title == "Teaching Aide" {
			t.Fatal("already shown title leaked into results")
		}
	}
}
