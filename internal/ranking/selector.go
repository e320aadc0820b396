package ranking

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
	"github.com/humboldtjobs/humboldt-jobs/internal/query"
)

// highestPayPhrases mark queries that want postings ordered purely by salary.
var highestPayPhrases = []string{
	"highest pay", "best pay", "most pay", "top pay",
	"highest salary", "best salary",
}

// minNarrowFloor caps the candidate threshold for the job-type and experience
// narrowing steps.
const minNarrowFloor = 3

// Selector picks a ranked, size-bounded list of postings for a query.
type Selector struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewSelector(logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{logger: logger, now: time.Now}
}

// step describes the outcome of one candidate-pool transformation so debug
// logs show where postings were dropped.
type step struct {
	name    string
	initial int
	left    int
	applied bool
}

func (s *Selector) logStep(st step) {
	s.logger.Debug("selection step",
		zap.String("name", st.name),
		zap.Bool("applied", st.applied),
		zap.Int("initial", st.initial),
		zap.Int("dropped", st.initial-st.left),
		zap.Int("left", st.left),
	)
}

// narrow applies keep to the pool only when the result retains at least
// minLeft candidates; otherwise the pool is returned untouched. This keeps an
// over-specific query from emptying the result list.
func (s *Selector) narrow(pool *jobstore.Jobs, name string, minLeft int, keep func(*jobstore.Job) bool) *jobstore.Jobs {
	narrowed := pool.Where(keep)
	st := step{name: name, initial: pool.Len(), left: narrowed.Len(), applied: true}

	if narrowed.Len() < minLeft {
		st.left = pool.Len()
		st.applied = false
		s.logStep(st)
		return pool
	}

	s.logStep(st)
	return narrowed
}

// Select returns up to limit postings ranked for the query, never including a
// posting whose title appears in excludeTitles, plus the total number of
// matching candidates before the limit was applied. The input collection is
// not modified.
func (s *Selector) Select(jobs *jobstore.Jobs, rawQuery string, limit int, excludeTitles []string) ([]*jobstore.Job, int) {
	if jobs == nil || limit <= 0 {
		return nil, 0
	}

	pool := &jobstore.Jobs{Items: append([]*jobstore.Job(nil), jobs.Items...)}

	initial := pool.Len()
	removed := pool.ExcludeTitles(excludeTitles)
	s.logStep(step{name: "exclude_shown", initial: initial, left: pool.Len(), applied: len(removed) > 0})

	q := strings.ToLower(rawQuery)
	filters := query.DetectFilters(rawQuery)

	if isHighestPayQuery(q) {
		return s.selectHighestPaying(pool, filters, limit)
	}

	if filters.Category != "" {
		target := strings.ToLower(filters.Category)
		pool = s.narrow(pool, "category", limit, func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.Category), target)
		})
	}

	typeFloor := min(limit, minNarrowFloor)
	if filters.JobType != "" {
		target := strings.ToLower(filters.JobType)
		pool = s.narrow(pool, "job_type", typeFloor, func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.JobType), target)
		})
	}

	if filters.Experience != "" {
		target := strings.ToLower(filters.Experience)
		pool = s.narrow(pool, "experience", typeFloor, func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.ExperienceLevel), target)
		})
	}

	keywords := query.ExtractKeywords(rawQuery)
	if len(keywords) == 0 {
		// Without keyword signal, scoring adds nothing beyond the narrowing
		// already applied; keep existing order.
		return pool.First(limit), pool.Len()
	}

	now := s.now()

	type scored struct {
		job   *jobstore.Job
		score int
	}

	candidates := make([]scored, 0, pool.Len())
	for _, job := range pool.Items {
		if sc := Score(job, keywords, filters, now); sc > 0 {
			candidates = append(candidates, scored{job: job, score: sc})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	total := len(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result := make([]*jobstore.Job, len(candidates))
	for i, c := range candidates {
		result[i] = c.job
	}

	s.logger.Debug("selection scored",
		zap.Int("keywords", len(keywords)),
		zap.Int("pool", pool.Len()),
		zap.Int("matched", total),
		zap.Int("returned", len(result)),
	)

	return result, total
}

// selectHighestPaying handles pure salary-ordering queries: restrict to
// postings with any salary signal, optionally narrow by category and (when
// enough candidates survive) experience, then order by effective maximum
// salary. Keyword scoring is bypassed entirely.
func (s *Selector) selectHighestPaying(pool *jobstore.Jobs, filters *query.Filters, limit int) ([]*jobstore.Job, int) {
	pool = pool.Where(func(j *jobstore.Job) bool { return j.HasSalarySignal() })
	s.logStep(step{name: "salary_signal", initial: pool.Len(), left: pool.Len(), applied: true})

	if filters.Category != "" {
		target := strings.ToLower(filters.Category)
		pool = pool.Where(func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.Category), target)
		})
	}

	if filters.Experience != "" {
		target := strings.ToLower(filters.Experience)
		pool = s.narrow(pool, "experience", limit, func(j *jobstore.Job) bool {
			return strings.Contains(strings.ToLower(j.ExperienceLevel), target)
		})
	}

	sort.SliceStable(pool.Items, func(i, j int) bool {
		return pool.Items[i].EffectiveMaxSalary() > pool.Items[j].EffectiveMaxSalary()
	})

	return pool.First(limit), pool.Len()
}

func isHighestPayQuery(q string) bool {
	for _, phrase := range highestPayPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
