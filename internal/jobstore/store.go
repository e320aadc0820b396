package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id TEXT NOT NULL,
	source_name TEXT NOT NULL,
	title TEXT NOT NULL,
	employer TEXT NOT NULL,
	category TEXT NOT NULL,
	classification TEXT,
	original_category TEXT,
	location TEXT,
	url TEXT NOT NULL UNIQUE,
	external_url TEXT,
	description TEXT,
	requirements TEXT,
	has_benefits INTEGER NOT NULL DEFAULT 0,
	salary_text TEXT,
	salary_min INTEGER NOT NULL DEFAULT 0,
	salary_max INTEGER NOT NULL DEFAULT 0,
	salary_type TEXT,
	job_type TEXT,
	experience_level TEXT,
	education_required TEXT,
	department TEXT,
	is_remote INTEGER NOT NULL DEFAULT 0,
	posted_date TIMESTAMP,
	closing_date TIMESTAMP,
	scraped_at TIMESTAMP NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_jobs_category ON jobs(category);
CREATE INDEX IF NOT EXISTS idx_jobs_employer ON jobs(employer);
CREATE INDEX IF NOT EXISTS idx_jobs_active ON jobs(is_active);
CREATE INDEX IF NOT EXISTS idx_jobs_posted ON jobs(posted_date);
CREATE TABLE IF NOT EXISTS scrape_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scraped_at TIMESTAMP NOT NULL,
	jobs_inserted INTEGER NOT NULL DEFAULT 0,
	jobs_updated INTEGER NOT NULL DEFAULT 0,
	jobs_total INTEGER NOT NULL DEFAULT 0,
	duration_seconds INTEGER NOT NULL DEFAULT 0
);
`

// Store provides access to the aggregated job records. Active postings are
// loaded once per warm process and served from an in-memory snapshot.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu       sync.Mutex
	snapshot *Jobs
}

// Open opens (creating if needed) the sqlite database at path and ensures the
// schema exists.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const jobColumns = `id, source_id, source_name, title, employer, category,
	classification, original_category, location, url, external_url,
	description, requirements, has_benefits, salary_text, salary_min,
	salary_max, salary_type, job_type, experience_level, education_required,
	department, is_remote, posted_date, closing_date, scraped_at, is_active`

func scanJob(rows *sql.Rows) (*Job, error) {
	var job Job
	var classification, originalCategory, location, externalURL sql.NullString
	var description, requirements, salaryText, salaryType sql.NullString
	var jobType, experienceLevel, educationRequired, department sql.NullString
	var postedDate, closingDate sql.NullTime

	err := rows.Scan(
		&job.ID, &job.SourceID, &job.SourceName, &job.Title, &job.Employer,
		&job.Category, &classification, &originalCategory, &location, &job.URL,
		&externalURL, &description, &requirements, &job.HasBenefits,
		&salaryText, &job.SalaryMin, &job.SalaryMax, &salaryType, &jobType,
		&experienceLevel, &educationRequired, &department, &job.IsRemote,
		&postedDate, &closingDate, &job.ScrapedAt, &job.IsActive,
	)
	if err != nil {
		return nil, err
	}

	job.Classification = classification.String
	job.OriginalCategory = originalCategory.String
	job.Location = location.String
	job.ExternalURL = externalURL.String
	job.Description = description.String
	job.Requirements = requirements.String
	job.SalaryText = salaryText.String
	job.SalaryType = salaryType.String
	job.JobType = jobType.String
	job.ExperienceLevel = experienceLevel.String
	job.EducationRequired = educationRequired.String
	job.Department = department.String
	job.PostedDate = postedDate.Time
	job.ClosingDate = closingDate.Time

	return &job, nil
}

// LoadActive fetches all active postings ordered by scrape recency.
func (s *Store) LoadActive(ctx context.Context) (*Jobs, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM jobs WHERE is_active = 1 ORDER BY scraped_at DESC, id ASC`, jobColumns))
	if err != nil {
		return nil, fmt.Errorf("querying active jobs: %w", err)
	}
	defer rows.Close()

	jobs := &Jobs{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs.Items = append(jobs.Items, job)
	}

	return jobs, rows.Err()
}

// Snapshot returns the cached active postings, loading them on first use.
// Callers must treat the result as read-only.
func (s *Store) Snapshot(ctx context.Context) (*Jobs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return s.snapshot, nil
	}

	jobs, err := s.LoadActive(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded job snapshot", zap.Int("count", jobs.Len()))
	s.snapshot = jobs
	return jobs, nil
}

// InvalidateSnapshot drops the cached postings so the next Snapshot call
// reloads from the database.
func (s *Store) InvalidateSnapshot() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

// Upsert inserts the posting or refreshes the existing row with the same
// canonical URL. It reports whether a new row was created.
func (s *Store) Upsert(ctx context.Context, job *Job) (bool, error) {
	if job.ScrapedAt.IsZero() {
		job.ScrapedAt = time.Now().UTC()
	}

	var existed bool
	row := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE url = ?)`, job.URL)
	if err := row.Scan(&existed); err != nil {
		return false, fmt.Errorf("checking job %q: %w", job.URL, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			source_id, source_name, title, employer, category, classification,
			original_category, location, url, external_url, description,
			requirements, has_benefits, salary_text, salary_min, salary_max,
			salary_type, job_type, experience_level, education_required,
			department, is_remote, posted_date, closing_date, scraped_at, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			employer = excluded.employer,
			category = excluded.category,
			classification = excluded.classification,
			location = excluded.location,
			description = excluded.description,
			requirements = excluded.requirements,
			has_benefits = excluded.has_benefits,
			salary_text = excluded.salary_text,
			salary_min = excluded.salary_min,
			salary_max = excluded.salary_max,
			salary_type = excluded.salary_type,
			job_type = excluded.job_type,
			experience_level = excluded.experience_level,
			education_required = excluded.education_required,
			department = excluded.department,
			is_remote = excluded.is_remote,
			posted_date = excluded.posted_date,
			closing_date = excluded.closing_date,
			scraped_at = excluded.scraped_at,
			is_active = 1`,
		job.SourceID, job.SourceName, job.Title, job.Employer, job.Category,
		job.Classification, job.OriginalCategory, job.Location, job.URL,
		job.ExternalURL, job.Description, job.Requirements, job.HasBenefits,
		job.SalaryText, job.SalaryMin, job.SalaryMax, job.SalaryType,
		job.JobType, job.ExperienceLevel, job.EducationRequired, job.Department,
		job.IsRemote, nullableTime(job.PostedDate), nullableTime(job.ClosingDate),
		job.ScrapedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upserting job %q: %w", job.URL, err)
	}

	return !existed, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// EmployerCount pairs an employer with its active posting count.
type EmployerCount struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	JobCount int    `json:"job_count"`
}

// Employers returns active employers with posting counts, optionally filtered
// by category and a minimum posting count, most postings first.
func (s *Store) Employers(ctx context.Context, category string, minJobs int) ([]EmployerCount, error) {
	query := `SELECT employer, category, COUNT(*) AS cnt FROM jobs WHERE is_active = 1`
	args := []any{}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` GROUP BY employer HAVING cnt >= ? ORDER BY cnt DESC, employer ASC`
	args = append(args, minJobs)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying employers: %w", err)
	}
	defer rows.Close()

	var employers []EmployerCount
	for rows.Next() {
		var emp EmployerCount
		if err := rows.Scan(&emp.Name, &emp.Category, &emp.JobCount); err != nil {
			return nil, fmt.Errorf("scanning employer row: %w", err)
		}
		employers = append(employers, emp)
	}

	return employers, rows.Err()
}

// CategoryCount pairs a category with its active posting count.
type CategoryCount struct {
	Name     string `json:"name"`
	JobCount int    `json:"job_count"`
}

// Categories returns active categories with posting counts, largest first.
func (s *Store) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt FROM jobs
		WHERE is_active = 1
		GROUP BY category
		ORDER BY cnt DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []CategoryCount
	for rows.Next() {
		var cat CategoryCount
		if err := rows.Scan(&cat.Name, &cat.JobCount); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

// Stats summarizes the aggregated postings.
type Stats struct {
	TotalJobs      int             `json:"total_jobs"`
	TotalEmployers int             `json:"total_employers"`
	ByCategory     []CategoryCount `json:"jobs_by_category"`
	BySource       []CategoryCount `json:"jobs_by_source"`
}

// GetStats returns aggregation statistics over active postings.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT employer) FROM jobs WHERE is_active = 1`)
	if err := row.Scan(&stats.TotalJobs, &stats.TotalEmployers); err != nil {
		return nil, fmt.Errorf("querying totals: %w", err)
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	stats.ByCategory = categories

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_name, COUNT(*) AS cnt FROM jobs
		WHERE is_active = 1
		GROUP BY source_name
		ORDER BY cnt DESC, source_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src CategoryCount
		if err := rows.Scan(&src.Name, &src.JobCount); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		stats.BySource = append(stats.BySource, src)
	}

	return stats, rows.Err()
}

// Get returns a single posting by id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Job, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM jobs WHERE id = ?`, jobColumns), id)
	if err != nil {
		return nil, fmt.Errorf("querying job %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	return scanJob(rows)
}

// LogScrape records a completed scrape run.
func (s *Store) LogScrape(ctx context.Context, inserted, updated, total int, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_logs (scraped_at, jobs_inserted, jobs_updated, jobs_total, duration_seconds)
		VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC(), inserted, updated, total, int(duration.Seconds()))
	if err != nil {
		return fmt.Errorf("recording scrape log: %w", err)
	}
	return nil
}
