package scraper

import (
	"regexp"
	"strings"
)

// Feed entries arrive as free text, so employment type, experience level,
// education requirements, and a requirements section are recovered from the
// title and description at ingest. Without them the ranking and narrowing
// rules downstream would have nothing to match against.

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

type scoredExpr struct {
	expr   string
	weight float64
}

func compilePatterns(exprs []scoredExpr) []weightedPattern {
	patterns := make([]weightedPattern, 0, len(exprs))
	for _, e := range exprs {
		patterns = append(patterns, weightedPattern{
			re:     regexp.MustCompile(`(?i)` + e.expr),
			weight: e.weight,
		})
	}
	return patterns
}

var entryPatterns = compilePatterns([]scoredExpr{
	{`\bentry[\s-]?level\b`, 1.0},
	{`\bentry\b`, 0.8},
	{`\bjunior\b`, 0.9},
	{`\btrainee\b`, 1.0},
	{`\bintern(?:ship)?\b`, 1.0},
	{`\bapprentice\b`, 1.0},
	{`\bno\s+experience\s+(?:required|necessary|needed)\b`, 1.0},
	{`\blevel\s+(?:1|i)\b`, 0.9},
	{`\baide\b`, 0.7},
	{`\bclerk\b`, 0.5},
})

var midPatterns = compilePatterns([]scoredExpr{
	{`\bmid[\s-]?level\b`, 1.0},
	{`\bintermediate\b`, 0.9},
	{`\blevel\s+(?:2|ii)\b`, 0.9},
	{`\b(?:2|3|4)\s*\+?\s+years?\s+(?:of\s+)?experience\b`, 0.8},
	{`\bexperienced\b`, 0.5},
	{`\bspecialist\b`, 0.5},
	{`\bcoordinator\b`, 0.4},
})

var seniorPatterns = compilePatterns([]scoredExpr{
	{`\bsenior\b`, 1.0},
	{`\bsr\.?\b`, 0.9},
	{`\blead\b`, 0.8},
	{`\bprincipal\b`, 0.9},
	{`\bdirector\b`, 0.9},
	{`\bmanager\b`, 0.7},
	{`\bsupervisor\b`, 0.7},
	{`\bsuperintendent\b`, 0.9},
	{`\bchief\b`, 1.0},
	{`\blevel\s+(?:3|4|iii|iv)\b`, 0.9},
	{`\b(?:[5-9]|1[0-9])\s*\+?\s+years?\s+(?:of\s+)?experience\b`, 0.9},
})

// experienceConfidence is the minimum score below which no level is reported.
const experienceConfidence = 0.4

// detectExperience classifies a posting as Entry, Mid, or Senior from its
// title and body. Title matches count double.
func detectExperience(title, body string) string {
	title = strings.ToLower(title)
	full := title + " " + strings.ToLower(body)

	best := ""
	bestScore := 0.0
	for _, level := range []struct {
		name     string
		patterns []weightedPattern
	}{
		{"Entry", entryPatterns},
		{"Mid", midPatterns},
		{"Senior", seniorPatterns},
	} {
		if score := scorePatterns(title, full, level.patterns); score > bestScore {
			best, bestScore = level.name, score
		}
	}

	if bestScore < experienceConfidence {
		return ""
	}
	return best
}

func scorePatterns(title, full string, patterns []weightedPattern) float64 {
	score := 0.0
	for _, p := range patterns {
		switch {
		case p.re.MatchString(title):
			score += p.weight * 2
		case p.re.MatchString(full):
			score += p.weight
		}
	}
	return score
}

// educationPatterns are ordered lowest to highest; the highest match wins.
var educationPatterns = []struct {
	re    *regexp.Regexp
	level string
}{
	{regexp.MustCompile(`(?i)\bhigh\s+school\b|\bhs\s+diploma\b|\bged\b`), "High School"},
	{regexp.MustCompile(`(?i)\bassociate'?s?\s+degree\b|\baa\s+degree\b|\b2[\s-]year\s+degree\b`), "Associate"},
	{regexp.MustCompile(`(?i)\bbachelor'?s?\b|\bb\.?[as]\.?\b|\bundergraduate\s+degree\b|\b4[\s-]year\s+degree\b`), "Bachelor"},
	{regexp.MustCompile(`(?i)\bmaster'?s?\b|\bmba\b|\bgraduate\s+degree\b`), "Master"},
	{regexp.MustCompile(`(?i)\bdoctorate\b|\bph\.?d\.?\b`), "Doctorate"},
}

func detectEducation(text string) string {
	level := ""
	for _, p := range educationPatterns {
		if p.re.MatchString(text) {
			level = p.level
		}
	}
	return level
}

// jobTypeLabels are checked in order so the narrower schedules win over the
// generic full/part-time words.
var jobTypeLabels = []struct {
	label    string
	triggers []string
}{
	{"Per Diem", []string{"per diem"}},
	{"Seasonal", []string{"seasonal"}},
	{"Temporary", []string{"temporary", "visiting"}},
	{"Intermittent", []string{"intermittent"}},
	{"Part-time", []string{"part-time", "part time"}},
	{"Full-time", []string{"full-time", "full time"}},
}

func detectJobType(text string) string {
	text = strings.ToLower(text)
	for _, jt := range jobTypeLabels {
		for _, trigger := range jt.triggers {
			if strings.Contains(text, trigger) {
				return jt.label
			}
		}
	}
	return ""
}

var (
	requirementsHeading = regexp.MustCompile(`(?i)\b(?:minimum\s+)?(?:requirements?|qualifications?)\b:?\s*`)
	nextSectionHeading  = regexp.MustCompile(`(?i)\b(?:benefits|salary|rate\s+of\s+pay|how\s+to\s+apply|application|equal\s+opportunity)\b`)

	benefitsPattern = regexp.MustCompile(`(?i)\bbenefit(?:s|ted)?\b|\bwe\s+offer\b`)
)

const (
	minRequirementsLen = 40
	maxRequirementsLen = 1500
)

// extractRequirements cuts the requirements/qualifications section out of a
// cleaned description. Sections too short to be meaningful are dropped.
func extractRequirements(description string) string {
	loc := requirementsHeading.FindStringIndex(description)
	if loc == nil {
		return ""
	}

	section := description[loc[1]:]
	if end := nextSectionHeading.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	section = strings.TrimSpace(section)
	if len(section) < minRequirementsLen {
		return ""
	}
	if runes := []rune(section); len(runes) > maxRequirementsLen {
		section = strings.TrimSpace(string(runes[:maxRequirementsLen]))
	}
	return section
}
