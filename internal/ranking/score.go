// Package ranking scores and selects job postings for a query using the
// keyword and filter signals extracted from it.
package ranking

import (
	"strings"
	"time"

	"github.com/humboldtjobs/humboldt-jobs/internal/jobstore"
	"github.com/humboldtjobs/humboldt-jobs/internal/query"
)

// Score weights. All contributions are additive with no clamping.
const (
	categoryMatchScore      = 100
	experienceMatchScore    = 50
	experienceMismatchScore = -10
	jobTypeMatchScore       = 50
	salaryCeilingScore      = 30
	salaryFloorScore        = 20

	titleKeywordScore        = 15
	categoryKeywordScore     = 20
	descriptionKeywordScore  = 5
	requirementsKeywordScore = 5
	employerKeywordScore     = 8
	locationKeywordScore     = 5

	salaryTextBonus   = 3
	salaryParsedBonus = 2
	descriptionBonus  = 2
	requirementsBonus = 1
	benefitsBonus     = 1

	weekRecencyBonus  = 5
	monthRecencyBonus = 2
)

// filterEchoTokens are keywords that merely restate a detected filter; they
// are skipped during keyword scoring so filter signal is not counted twice.
var filterEchoTokens = map[string]struct{}{
	"full":     {},
	"time":     {},
	"entry":    {},
	"level":    {},
	"starting": {},
}

// Score assigns a relevance score to a (job, query) pair. Higher is more
// relevant; the result is a plain signed sum and is not normalized.
func Score(job *jobstore.Job, keywords []string, filters *query.Filters, now time.Time) int {
	score := 0

	category := strings.ToLower(job.Category)
	title := strings.ToLower(job.Title)
	description := strings.ToLower(job.Description)
	requirements := strings.ToLower(job.Requirements)
	employer := strings.ToLower(job.Employer)
	location := strings.ToLower(job.Location)
	experience := strings.ToLower(job.ExperienceLevel)
	jobType := strings.ToLower(job.JobType)

	if filters.Category != "" && strings.Contains(category, strings.ToLower(filters.Category)) {
		score += categoryMatchScore
	}

	if filters.Experience != "" {
		switch {
		case strings.Contains(experience, strings.ToLower(filters.Experience)):
			score += experienceMatchScore
		case experience != "":
			// A posting silent on experience is never penalized; only a
			// stated, non-matching level is.
			score += experienceMismatchScore
		}
	}

	if filters.JobType != "" && strings.Contains(jobType, strings.ToLower(filters.JobType)) {
		score += jobTypeMatchScore
	}

	if filters.Salary != nil {
		if job.SalaryMax > 0 && job.SalaryMax >= filters.Salary.Min {
			score += salaryCeilingScore
		}
		if job.SalaryMin > 0 && (filters.Salary.Max == 0 || job.SalaryMin <= filters.Salary.Max) {
			score += salaryFloorScore
		}
	}

	for _, keyword := range keywords {
		if _, echo := filterEchoTokens[keyword]; echo {
			continue
		}
		if strings.Contains(title, keyword) {
			score += titleKeywordScore
		}
		if filters.Category == "" && strings.Contains(category, keyword) {
			score += categoryKeywordScore
		}
		if strings.Contains(description, keyword) {
			score += descriptionKeywordScore
		}
		if strings.Contains(requirements, keyword) {
			score += requirementsKeywordScore
		}
		if strings.Contains(employer, keyword) {
			score += employerKeywordScore
		}
		if strings.Contains(location, keyword) {
			score += locationKeywordScore
		}
	}

	if strings.TrimSpace(job.SalaryText) != "" {
		score += salaryTextBonus
	}
	if job.SalaryMin > 0 || job.SalaryMax > 0 {
		score += salaryParsedBonus
	}
	if description != "" {
		score += descriptionBonus
	}
	if requirements != "" {
		score += requirementsBonus
	}
	if job.HasBenefits {
		score += benefitsBonus
	}

	score += recencyBonus(job.PostedDate, now)

	return score
}

// recencyBonus rewards fresh postings: +5 within a week, +2 within a month.
// Dates are compared as whole-day deltas on the same reference clock.
func recencyBonus(posted, now time.Time) int {
	if posted.IsZero() {
		return 0
	}

	days := int(now.Sub(posted).Hours() / 24)
	switch {
	case days < 0:
		return 0
	case days <= 7:
		return weekRecencyBonus
	case days <= 30:
		return monthRecencyBonus
	}
	return 0
}
