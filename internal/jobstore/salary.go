package jobstore

import (
	"regexp"
	"strconv"
	"strings"
)

// Annualization factors for converting rates to yearly amounts.
const (
	hoursPerYear  = 2080
	monthsPerYear = 12
	daysPerYear   = 260
)

// ParsedSalary holds salary values normalized to annual amounts.
type ParsedSalary struct {
	MinAnnual int
	MaxAnnual int
	Type      string // hourly, monthly, annual, daily
}

var (
	negotiablePattern = regexp.MustCompile(`(?i)\bd\.?o\.?[eq]\.?\b|depends?\s+on\s+(experience|qualifications)|commensurate\s+with\s+experience|negotiable|competitive`)

	hourlyPattern  = regexp.MustCompile(`(?i)/\s*hr\b|/\s*hour|per\s+hour|hourly|/\s*h\b|an\s+hour`)
	monthlyPattern = regexp.MustCompile(`(?i)/\s*mo\b|/\s*month|per\s+month|monthly|/\s*mon\b`)
	annualPattern  = regexp.MustCompile(`(?i)/\s*yr\b|/\s*year|per\s+year|annually|annual|/\s*annum|p\.a\.`)
	dailyPattern   = regexp.MustCompile(`(?i)/\s*day|per\s+day|daily|/\s*diem`)

	salaryNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseSalary extracts structured, annualized salary data from a free-text
// salary string such as "$25.50 - $32.00/hr". Negotiable postings (DOE/DOQ)
// yield no parsed values.
func ParseSalary(text string) ParsedSalary {
	var parsed ParsedSalary

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || negotiablePattern.MatchString(text) {
		return parsed
	}

	parsed.Type = detectSalaryType(text)

	low, high, ok := extractSalaryValues(text)
	if !ok {
		return parsed
	}

	factor := 1.0
	switch parsed.Type {
	case "hourly":
		factor = hoursPerYear
	case "monthly":
		factor = monthsPerYear
	case "daily":
		factor = daysPerYear
	default:
		// Bare numbers are assumed annual.
		parsed.Type = "annual"
	}

	parsed.MinAnnual = int(low * factor)
	parsed.MaxAnnual = int(high * factor)

	return parsed
}

func detectSalaryType(text string) string {
	switch {
	case hourlyPattern.MatchString(text):
		return "hourly"
	case monthlyPattern.MatchString(text):
		return "monthly"
	case annualPattern.MatchString(text):
		return "annual"
	case dailyPattern.MatchString(text):
		return "daily"
	}
	return ""
}

// extractSalaryValues pulls the first two numbers out of the text, treating a
// single number as both bounds.
func extractSalaryValues(text string) (float64, float64, bool) {
	clean := strings.NewReplacer("$", "", ",", "").Replace(text)

	matches := salaryNumberPattern.FindAllString(clean, 2)
	if len(matches) == 0 {
		return 0, 0, false
	}

	low, err := strconv.ParseFloat(matches[0], 64)
	if err != nil {
		return 0, 0, false
	}

	high := low
	if len(matches) > 1 {
		if v, err := strconv.ParseFloat(matches[1], 64); err == nil && v > low {
			high = v
		}
	}

	return low, high, true
}

// AnnualizeLargest derives an annual ceiling from free salary text by taking
// the largest number it mentions and multiplying by the rate unit: 2080 for
// hourly, 12 for monthly, otherwise the number is used as-is.
func AnnualizeLargest(text string) int {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0
	}

	clean := strings.NewReplacer("$", "", ",", "").Replace(text)

	largest := 0.0
	for _, match := range salaryNumberPattern.FindAllString(clean, -1) {
		if v, err := strconv.ParseFloat(match, 64); err == nil && v > largest {
			largest = v
		}
	}
	if largest == 0 {
		return 0
	}

	switch {
	case hourlyPattern.MatchString(text):
		return int(largest * hoursPerYear)
	case monthlyPattern.MatchString(text):
		return int(largest * monthsPerYear)
	}

	return int(largest)
}
