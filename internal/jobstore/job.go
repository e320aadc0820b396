package jobstore

import (
	"strings"
	"time"
)

// Job is a single normalized posting aggregated from an external source.
// The canonical URL is the unique external identity of a posting.
type Job struct {
	ID         int64  `json:"id,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
	SourceName string `json:"source_name,omitempty"`

	Title            string `json:"title"`
	Employer         string `json:"employer"`
	Category         string `json:"category"`
	Classification   string `json:"classification,omitempty"`
	OriginalCategory string `json:"original_category,omitempty"`

	Location string `json:"location,omitempty"`
	URL      string `json:"url"`
	// ExternalURL points at the employer's own posting when it differs from
	// the canonical aggregator URL.
	ExternalURL string `json:"external_url,omitempty"`

	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	HasBenefits  bool   `json:"has_benefits,omitempty"`

	SalaryText string `json:"salary_text,omitempty"`
	// SalaryMin and SalaryMax are annualized amounts parsed from SalaryText.
	// Zero means no parsed value.
	SalaryMin  int    `json:"salary_min,omitempty"`
	SalaryMax  int    `json:"salary_max,omitempty"`
	SalaryType string `json:"salary_type,omitempty"`

	JobType           string `json:"job_type,omitempty"`
	ExperienceLevel   string `json:"experience_level,omitempty"`
	EducationRequired string `json:"education_required,omitempty"`
	Department        string `json:"department,omitempty"`
	IsRemote          bool   `json:"is_remote,omitempty"`

	PostedDate  time.Time `json:"posted_date,omitzero"`
	ClosingDate time.Time `json:"closing_date,omitzero"`
	ScrapedAt   time.Time `json:"scraped_at,omitzero"`
	IsActive    bool      `json:"is_active,omitempty"`
}

// HasSalarySignal reports whether the posting carries any salary information,
// parsed or free-text.
func (j *Job) HasSalarySignal() bool {
	return j.SalaryMax > 0 || j.SalaryMin > 0 || strings.TrimSpace(j.SalaryText) != ""
}

// EffectiveMaxSalary returns the best-known annual ceiling for the posting.
// A parsed maximum wins; otherwise the largest number in the salary text is
// annualized by the unit the text mentions.
func (j *Job) EffectiveMaxSalary() int {
	if j.SalaryMax > 0 {
		return j.SalaryMax
	}
	return AnnualizeLargest(j.SalaryText)
}

// DescriptionSnippet returns the leading part of the description for list
// responses, capped at limit runes.
func (j *Job) DescriptionSnippet(limit int) string {
	desc := strings.TrimSpace(j.Description)
	if desc == "" || limit <= 0 {
		return ""
	}
	runes := []rune(desc)
	if len(runes) <= limit {
		return desc
	}
	return string(runes[:limit]) + "..."
}

// Jobs is an ordered collection of postings. Order is meaningful: selection
// must be stable with respect to it.
type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

// ExcludeTitles removes every posting whose trimmed title matches one of the
// provided titles case-insensitively, preserving the relative order of the
// remaining postings. It returns the removed titles.
func (j *Jobs) ExcludeTitles(titles []string) []string {
	if len(titles) == 0 {
		return nil
	}

	excluded := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		normalized := strings.ToLower(strings.TrimSpace(title))
		if normalized != "" {
			excluded[normalized] = struct{}{}
		}
	}

	var removed []string
	kept := j.Items[:0]
	for _, job := range j.Items {
		if _, ok := excluded[strings.ToLower(strings.TrimSpace(job.Title))]; ok {
			removed = append(removed, job.Title)
			continue
		}
		kept = append(kept, job)
	}
	j.Items = kept

	return removed
}

// Where returns a new collection holding the postings for which keep returns
// true, preserving order. The receiver is not modified.
func (j *Jobs) Where(keep func(*Job) bool) *Jobs {
	filtered := &Jobs{Items: make([]*Job, 0, len(j.Items))}
	for _, job := range j.Items {
		if keep(job) {
			filtered.Items = append(filtered.Items, job)
		}
	}
	return filtered
}

// First returns up to n postings from the head of the collection.
func (j *Jobs) First(n int) []*Job {
	if n < 0 {
		n = 0
	}
	if n > len(j.Items) {
		n = len(j.Items)
	}
	return j.Items[:n]
}

func (j *Jobs) FindByURL(url string) *Job {
	for _, job := range j.Items {
		if job.URL == url {
			return job
		}
	}
	return nil
}
