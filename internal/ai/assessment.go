package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrGeneratorUnusable marks generator output that cannot be trusted. It never
// leaves the composer; callers receive the fallback assessment instead.
var ErrGeneratorUnusable = errors.New("generator output unusable")

// Source tells which path produced an assessment.
type Source string

const (
	SourceGenerative Source = "generative"
	SourceFallback   Source = "fallback"
)

// MatchAssessment is the canonical result of comparing a resume with a job description.
type MatchAssessment struct {
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// Generator produces free text for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// FallbackFunc computes a deterministic assessment from the same inputs the
// generator saw.
type FallbackFunc func(jobDescription string, chunks []string) MatchAssessment

// Format renders an assessment in the display form shared by the generative
// and fallback paths. Empty blocks are omitted.
func Format(a MatchAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match Score: %d/100\n\n", a.Score)

	if len(a.Strengths) > 0 {
		b.WriteString("Strengths:\n")
		writeItems(&b, a.Strengths)
		b.WriteString("\n")
	}

	if len(a.Weaknesses) > 0 {
		b.WriteString("Weaknesses:\n")
		writeItems(&b, a.Weaknesses)
	}

	return strings.TrimSpace(b.String())
}

func writeItems(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
