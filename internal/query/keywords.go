// Package query turns free-text job queries into keyword and filter signals
// consumed by the ranking pipeline.
package query

import "strings"

// stopWords holds common English function words plus domain filler terms that
// carry no ranking signal in a job query.
var stopWords = map[string]struct{}{}

func init() {
	words := []string{
		"the", "and", "for", "are", "was", "were", "been", "being", "but",
		"not", "you", "your", "yours", "our", "ours", "who", "whom", "what",
		"which", "where", "when", "how", "why", "can", "could", "should",
		"would", "will", "shall", "may", "might", "must", "have", "has",
		"had", "does", "did", "doing", "this", "that", "these", "those",
		"there", "here", "with", "from", "into", "about", "any", "some",
		"all", "other", "than", "then", "them", "they", "their", "his",
		"her", "its", "out", "get", "got", "want", "need", "show", "find",
		"looking", "look", "search", "searching", "give", "tell", "please",
		"near", "around", "like",
		// Domain fillers: present in nearly every query, zero signal.
		"job", "jobs", "position", "positions", "hiring", "work", "working",
		"employment", "opening", "openings", "opportunity", "opportunities",
		"career", "careers", "humboldt", "county", "area", "local",
	}
	for _, w := range words {
		stopWords[w] = struct{}{}
	}
}

// ExtractKeywords returns the significant lowercase tokens of a query:
// alphanumeric runs longer than two characters that are not stop-words.
// Punctuation separates tokens. Duplicates are dropped, first occurrence
// order is kept. An empty result means "no keyword signal", not an error.
func ExtractKeywords(text string) []string {
	var keywords []string
	seen := map[string]struct{}{}

	var token strings.Builder
	flush := func() {
		if token.Len() == 0 {
			return
		}
		word := token.String()
		token.Reset()

		if len(word) <= 2 {
			return
		}
		if _, stop := stopWords[word]; stop {
			return
		}
		if _, dup := seen[word]; dup {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			token.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return keywords
}
