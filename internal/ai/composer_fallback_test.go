package ai_test

import (
	"context"
	"testing"

	"github.com/spigell/resume-rag/internal/ai"
	"github.com/spigell/resume-rag/internal/scoring"
	"go.uber.org/zap"
)

type noiseGenerator struct{}

func (noiseGenerator) GenerateContent(context.Context, string) (string, error) {
	return "Sure! Here is my evaluation: pretty good overall.", nil
}

func TestComposeNoiseMatchesKeywordScorer(t *testing.T) {
	t.Parallel()

	job := "Python SQL leadership"
	chunks := []string{"Python data pipelines", "SQL warehouse tuning"}

	composer := ai.NewComposer(noiseGenerator{}, scoring.Assess, zap.NewNop())
	got, source := composer.Compose(context.Background(), job, chunks)

	if source != ai.SourceFallback {
		t.Fatalf("expected fallback source, got %s", source)
	}

	if ai.Format(got) != ai.Format(scoring.Assess(job, chunks)) {
		t.Fatalf("fallback output differs:\n%s\nvs\n%s", ai.Format(got), ai.Format(scoring.Assess(job, chunks)))
	}
}
