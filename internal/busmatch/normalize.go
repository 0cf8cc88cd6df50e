// Package busmatch finds city bus routes between two loosely named stops.
package busmatch

import (
	"math"
	"strings"
	"unicode"
)

// suffixWords are dropped from stop names before comparison
var suffixWords = map[string]struct{}{
	"crossing": {},
	"xing":     {},
	"more":     {},
	"junction": {},
	"jn":       {},
	"station":  {},
	"stn":      {},
}

// Normalize lower-cases a stop name, strips punctuation and drops suffix words.
// Hyphens, slashes and underscores separate words; other punctuation is removed.
// The result is a single-space separated word list, so Normalize is idempotent.
func Normalize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r), r == '-', r == '/', r == '_':
			return ' '
		default:
			return -1
		}
	}, name)

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if _, drop := suffixWords[w]; drop {
			continue
		}
		kept = append(kept, w)
	}

	return strings.Join(kept, " ")
}

// Matches reports whether a user query refers to a stop name.
// It tries exact match, substring containment either way, then any word overlap.
func Matches(query, stop string) bool {
	q := Normalize(query)
	s := Normalize(stop)

	if q == "" || s == "" {
		return false
	}

	if q == s {
		return true
	}

	if strings.Contains(s, q) || strings.Contains(q, s) {
		return true
	}

	stopWords := strings.Fields(s)
	for _, qw := range strings.Fields(q) {
		for _, sw := range stopWords {
			if strings.Contains(sw, qw) || strings.Contains(qw, sw) {
				return true
			}
		}
	}

	return false
}

// FindStopIndex returns the index of the first stop matching query, or -1
func FindStopIndex(stops []string, query string) int {
	for i, stop := range stops {
		if Matches(query, stop) {
			return i
		}
	}
	return -1
}

// EstimateDuration returns travel minutes for a ride covering stopCount stops.
// AC buses average 2.5 min per stop, regular buses 3.5.
func EstimateDuration(stopCount int, ac bool) int {
	perStop := 3.5
	if ac {
		perStop = 2.5
	}
	return int(math.Ceil(float64(stopCount) * perStop))
}

// EstimateFare returns the fare in INR for a ride covering stopCount stops.
// AC: 30 + 2/stop capped at 80. Regular: 8 + 1/stop capped at 25.
func EstimateFare(stopCount int, ac bool) int {
	if ac {
		return min(30+stopCount*2, 80)
	}
	return min(8+stopCount, 25)
}
