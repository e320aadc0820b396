package query

import (
	"regexp"
	"strconv"
	"strings"
)

// SalaryRange is an inclusive annual salary band. Max of zero means no ceiling.
type SalaryRange struct {
	Min int
	Max int
}

// Filters carries the category, experience, job-type, and salary signals
// detected in a single query. Empty string / nil means no signal. Filters are
// transient per-query values and are never stored.
type Filters struct {
	Category   string
	Experience string
	JobType    string
	Salary     *SalaryRange
}

// Any reports whether at least one filter was detected.
func (f *Filters) Any() bool {
	return f.Category != "" || f.Experience != "" || f.JobType != "" || f.Salary != nil
}

// lexicon maps a canonical label to the phrases that trigger it. Lexicons are
// scanned in order and the first label with any matching phrase wins.
type lexicon struct {
	label    string
	triggers []string
}

var categoryLexicons = []lexicon{
	{"Healthcare", []string{"healthcare", "health care", "medical", "nurse", "nursing", "hospital", "clinic", "dental", "caregiver", "doctor"}},
	{"Education", []string{"education", "school", "teacher", "teaching", "professor", "instructor", "tutor", "classroom", "academic"}},
	{"Government", []string{"government", "city of", "public sector", "municipal", "civil service", "public agency"}},
	{"Retail", []string{"retail", "cashier", "grocery", "sales associate", "store clerk", "stocker"}},
	{"Hospitality", []string{"hospitality", "hotel", "restaurant", "food service", "cook", "server", "barista", "dishwasher"}},
	{"Construction", []string{"construction", "carpenter", "electrician", "plumber", "laborer", "trades"}},
	{"Nonprofit", []string{"nonprofit", "non-profit", "non profit", "social services", "social work", "community organization"}},
}

var experienceLexicons = []lexicon{
	{"Entry", []string{"entry level", "entry-level", "no experience", "beginner", "first job", "junior", "starting out", "trainee"}},
	{"Mid", []string{"mid level", "mid-level", "intermediate", "some experience", "a few years"}},
	{"Senior", []string{"senior", "experienced", "advanced", "lead", "management level", "director"}},
}

var jobTypeLexicons = []lexicon{
	{"Full-time", []string{"full time", "full-time", "fulltime"}},
	{"Part-time", []string{"part time", "part-time", "parttime"}},
	{"Per Diem", []string{"per diem", "per-diem"}},
	{"Temporary", []string{"temporary", "temp job", "seasonal", "short term", "short-term"}},
}

// matchLexicon returns the label of the first lexicon with a phrase found in
// the query, or empty when none match.
func matchLexicon(q string, lexicons []lexicon) string {
	for _, lex := range lexicons {
		for _, trigger := range lex.triggers {
			if strings.Contains(q, trigger) {
				return lex.label
			}
		}
	}
	return ""
}

var (
	// Explicit currency amounts: a $-prefixed or k-suffixed number, or a bare
	// 4-6 digit figure. Smaller bare numbers ("5 jobs") are not salary signal.
	amountPattern = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*([kK])?|\b(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*([kK])\b|\b(\d{4,6})\b`)

	qualitativePayPattern = regexp.MustCompile(`high\s*pay|good\s*pay|well\s*pay|high\s*salary|good\s*salary|well\s*paid|well[\s-]*paying|high[\s-]*paying`)
)

// qualitativeSalaryFloor is the assumed annual floor for queries that ask for
// good pay without naming a number.
const qualitativeSalaryFloor = 60000

// detectSalary parses an explicit amount into a ±20% band, scaling amounts
// under 200 by 1000 (they are already expressed in thousands). Without an
// explicit amount, a qualitative pay phrase yields a one-sided 60k floor.
func detectSalary(q string) *SalaryRange {
	if m := amountPattern.FindStringSubmatch(q); m != nil {
		digits, suffix := m[1], m[2]
		if digits == "" {
			digits, suffix = m[3], m[4]
		}
		if digits == "" {
			digits = m[5]
		}

		amount, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
		if err == nil && amount > 0 {
			if suffix != "" {
				amount *= 1000
			}
			if amount < 200 {
				amount *= 1000
			}
			return &SalaryRange{
				Min: int(amount * 0.8),
				Max: int(amount * 1.2),
			}
		}
	}

	if qualitativePayPattern.MatchString(q) {
		return &SalaryRange{Min: qualitativeSalaryFloor}
	}

	return nil
}

// DetectFilters runs the four independent detectors over the query. A query
// may satisfy several of them at once.
func DetectFilters(text string) *Filters {
	q := strings.ToLower(text)

	return &Filters{
		Category:   matchLexicon(q, categoryLexicons),
		Experience: matchLexicon(q, experienceLexicons),
		JobType:    matchLexicon(q, jobTypeLexicons),
		Salary:     detectSalary(q),
	}
}
