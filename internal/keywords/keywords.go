package keywords

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultLimit is the number of keywords returned when no limit is given.
const DefaultLimit = 25

// minTokenLength is the shortest token kept; anything up to two runes is noise.
const minTokenLength = 3

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "your": {}, "you": {}, "will": {}, "have": {}, "has": {},
	"a": {}, "an": {}, "in": {}, "on": {}, "of": {}, "to": {}, "is": {},
	"are": {}, "as": {}, "be": {}, "by": {}, "or": {}, "at": {}, "we": {},
	"our": {}, "skills": {}, "experience": {}, "years": {}, "work": {},
}

// IsStopword reports whether token is ignored by Extract.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Extract returns up to limit salient terms of text ordered by descending
// frequency. Terms with equal frequency keep the order in which they first
// appear in the text.
func Extract(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	freq := make(map[string]int)
	var order []string
	for _, token := range Tokenize(text) {
		if _, seen := freq[token]; !seen {
			order = append(order, token)
		}
		freq[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}

	return order
}

// Tokenize lower-cases text, turns every rune other than ASCII letters, digits
// and whitespace into a separator and returns the tokens that survive the
// length, stopword and numeric filters.
func Tokenize(text string) []string {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	fields := strings.Fields(normalized)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < minTokenLength || IsStopword(f) || isNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}

	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
