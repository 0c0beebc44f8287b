// Package scoring implements the keyword-overlap assessment used when the
// generative model is unavailable or returns something unusable.
package scoring

import (
	"math"
	"strings"

	"github.com/spigell/resume-rag/internal/ai"
	"github.com/spigell/resume-rag/internal/keywords"
)

const (
	// JobKeywords is how many keywords are taken from the job description.
	JobKeywords = 25
	// MaxListed caps strengths and weaknesses shown to the user.
	MaxListed = 10

	// MinScore keeps a sparse job description from producing a
	// discouraging zero.
	MinScore = 10
	MaxScore = 100
)

var _ ai.FallbackFunc = Assess

// Assess compares job keywords with the retrieved resume chunks. A keyword is
// a strength when it occurs as a substring of the lower-cased, space-joined
// chunks and a weakness otherwise. The score is the rounded share of
// strengths (half to even), clamped into [MinScore, MaxScore].
func Assess(jobDescription string, chunks []string) ai.MatchAssessment {
	jobKeywords := keywords.Extract(jobDescription, JobKeywords)
	joined := strings.ToLower(strings.Join(chunks, " "))

	strengths := []string{}
	weaknesses := []string{}
	for _, kw := range jobKeywords {
		if strings.Contains(joined, kw) {
			strengths = append(strengths, kw)
		} else {
			weaknesses = append(weaknesses, kw)
		}
	}

	ratio := float64(len(strengths)) / float64(max(1, len(jobKeywords)))
	score := int(math.RoundToEven(ratio * 100))
	score = min(MaxScore, max(MinScore, score))

	return ai.MatchAssessment{
		Score:      score,
		Strengths:  capList(strengths, MaxListed),
		Weaknesses: capList(weaknesses, MaxListed),
	}
}

func capList(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
