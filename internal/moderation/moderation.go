// Package moderation guards the chat pipeline against abusive queries before
// any scoring or model calls happen.
package moderation

import (
	"math/rand"
	"regexp"
	"strings"
)

// Blocked word lists by category, checked in order. Each word is compiled
// with repeated-letter tolerance so simple obfuscation ("fuuuck") still
// matches.
var blockedWords = []struct {
	category string
	words    []string
}{
	{"profanity", []string{"fuck", "shit", "bitch", "asshole", "bastard", "dick", "cunt"}},
	{"slurs", []string{"retard", "nazi"}},
	{"sexual", []string{"porn", "nude", "naked", "horny", "blowjob", "hooker"}},
	{"violence", []string{"kill you", "murder", "shoot up", "stab", "bomb"}},
	{"drugs", []string{"meth", "heroin", "cocaine", "fentanyl"}},
}

// redirectMessages are returned verbatim in place of a generated answer.
var redirectMessages = []string{
	"Let's keep things professional! I'm here to help you find work in Humboldt County. What kind of job are you looking for?",
	"I'd rather talk about job opportunities. Are you interested in any particular field?",
	"Let's stay focused on your job search. Tell me what kind of position you're after and I'll see what's out there.",
}

// Filter screens query text against the blocked patterns.
type Filter struct {
	patterns []*regexp.Regexp
	pick     func(n int) int
}

func New() *Filter {
	f := &Filter{pick: rand.Intn}

	for _, group := range blockedWords {
		for _, word := range group.words {
			f.patterns = append(f.patterns, compileObfuscationTolerant(word))
		}
	}

	return f
}

// compileObfuscationTolerant turns a blocked word into a case-insensitive
// pattern where every letter may repeat ("fuck" matches "fuuuckk").
func compileObfuscationTolerant(word string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?i)`)
	for _, r := range word {
		if r == ' ' {
			b.WriteString(`\s+`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
		b.WriteString(`+`)
	}
	return regexp.MustCompile(b.String())
}

// Blocked reports whether the query contains abusive content. A single match
// short-circuits: the query must not reach the model, the scorer, or the
// cache.
func (f *Filter) Blocked(queryText string) bool {
	for _, pattern := range f.patterns {
		if pattern.MatchString(queryText) {
			return true
		}
	}
	return false
}

// RedirectMessage returns one of the fixed redirect responses, chosen
// pseudo-randomly.
func (f *Filter) RedirectMessage() string {
	return redirectMessages[f.pick(len(redirectMessages))]
}
