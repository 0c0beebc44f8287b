package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
)

var fieldAliases = map[string][]string{
	"score":      {"matchscore", "score"},
	"strengths":  {"strengths", "strength", "pros"},
	"weaknesses": {"weaknesses", "weakness", "gaps", "cons"},
}

// ParseResponse interprets raw generator output. A non-nil assessment means the
// output is usable; every other outcome is an error wrapping
// ErrGeneratorUnusable.
//
// Any JSON object is usable, with missing fields defaulting to a zero score
// and empty lists. Output made only of digits is read as a bare score.
func ParseResponse(raw string) (*MatchAssessment, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty output", ErrGeneratorUnusable)
	}

	var decoded any
	jsonErr := json.Unmarshal([]byte(cleaned), &decoded)
	if jsonErr == nil {
		if data, ok := decoded.(map[string]any); ok {
			return fromMapping(data), nil
		}
	}

	if trimmed := strings.TrimSpace(raw); isDigits(trimmed) {
		return &MatchAssessment{
			Score:      clampScore(coerceFloat(trimmed)),
			Strengths:  []string{},
			Weaknesses: []string{},
		}, nil
	}

	if jsonErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnusable, jsonErr)
	}
	return nil, fmt.Errorf("%w: decoded %T instead of an object", ErrGeneratorUnusable, decoded)
}

func fromMapping(data map[string]any) *MatchAssessment {
	fields := normalizeKeys(data)

	return &MatchAssessment{
		Score:      clampScore(coerceFloat(fields["score"])),
		Strengths:  coerceStrings(fields["strengths"]),
		Weaknesses: coerceStrings(fields["weaknesses"]),
	}
}

// normalizeKeys maps loosely spelled keys such as "Match Score" or
// "match_score" onto canonical field names. Earlier aliases win.
func normalizeKeys(data map[string]any) map[string]any {
	byKey := make(map[string]any, len(data))
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		norm := normalizeKey(k)
		if _, exists := byKey[norm]; !exists {
			byKey[norm] = data[k]
		}
	}

	fields := make(map[string]any, len(fieldAliases))
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if v, ok := byKey[alias]; ok {
				fields[field] = v
				break
			}
		}
	}

	return fields
}

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.RoundToEven(math.Max(0, math.Min(100, score))))
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case string:
		trimmed := strings.TrimSpace(val)
		trimmed = strings.TrimSuffix(trimmed, "%")
		if before, _, found := strings.Cut(trimmed, "/"); found {
			trimmed = before
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		var f float64
		if err := mapstructure.WeakDecode(val, &f); err != nil {
			return math.NaN()
		}
		return f
	}
}

// coerceStrings accepts a list, a single value or nothing and always returns
// a non-nil slice of trimmed, non-empty strings.
func coerceStrings(v any) []string {
	out := []string{}
	if v == nil {
		return out
	}

	var decoded []string
	if err := mapstructure.WeakDecode(v, &decoded); err != nil {
		items, ok := v.([]any)
		if !ok {
			items = []any{v}
		}
		decoded = decoded[:0]
		for _, item := range items {
			decoded = append(decoded, coerceString(item))
		}
	}

	for _, s := range decoded {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
