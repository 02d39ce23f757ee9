// Package filter implements the keyword vocabulary and the message matching engine.
package filter

import (
	"regexp"
	"strings"

	"tg_scanner/internal/model"
)

var linkRe = regexp.MustCompile(`https?://\S+`)

// Match returns the keyword groups of vocab found in text, in vocabulary order.
// A single-term group matches when the term is a substring of the lower-cased
// text. A multi-term group matches only when every term is present and is
// reported as its terms joined by ", ".
// Blank text or an empty vocabulary never matches.
func Match(text string, vocab model.Vocabulary) []string {
	if len(vocab) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var matched []string
	for _, group := range vocab {
		switch {
		case len(group) > 1:
			if containsAll(lower, group) {
				matched = append(matched, strings.Join(group, ", "))
			}
		case len(group) == 1:
			if strings.Contains(lower, group[0]) {
				matched = append(matched, group[0])
			}
		}
	}
	return matched
}

func containsAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// ExtractFirstLink returns the first http(s) URL in text.
func ExtractFirstLink(text string) (string, bool) {
	link := linkRe.FindString(text)
	if link == "" {
		return "", false
	}
	return link, true
}
