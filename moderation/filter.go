package moderation

import (
	"regexp"
	"strings"
)

var nonBaseAlphabet = regexp.MustCompile(`[^a-z\s]`)

// NormalizeContent lowercases text and strips every character outside the
// base a-z alphabet and whitespace. Accented and non-Latin characters are
// removed outright, so denylist terms in other scripts can never match;
// that is an accepted limitation of this filter, not something to paper
// over here.
func NormalizeContent(orig string) string {
	return nonBaseAlphabet.ReplaceAllString(strings.ToLower(orig), "")
}

// ContainsProfanity reports whether normalized content contains any
// denylisted term.
func ContainsProfanity(content string) bool {
	clean := NormalizeContent(content)
	for _, word := range denylist {
		if strings.Contains(clean, word) {
			return true
		}
	}
	return false
}
