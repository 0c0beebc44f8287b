package ai

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	panicWith  any
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

var fixedFallback = func(string, []string) MatchAssessment {
	return MatchAssessment{Score: 10, Weaknesses: []string{"fallback"}}
}

func TestComposeUsesGeneratorOutput(t *testing.T) {
	stub := &stubGenerator{response: `{"Match Score":"82","Strengths":["Go"],"Weaknesses":["Rust"]}`}
	composer := NewComposer(stub, fixedFallback, zap.NewNop())

	assessment, source := composer.Compose(context.Background(), "Go developer", []string{"Go services"})
	if source != SourceGenerative {
		t.Fatalf("expected generative source, got %s", source)
	}

	text := Format(assessment)
	if !strings.HasPrefix(text, "Match Score: 82/100") {
		t.Fatalf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "Strengths:\n- Go") || !strings.Contains(text, "Weaknesses:\n- Rust") {
		t.Fatalf("missing blocks: %q", text)
	}
}

func TestComposeFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		generator Generator
	}{
		{name: "noise", generator: &stubGenerator{response: "I think this candidate is a strong fit."}},
		{name: "empty", generator: &stubGenerator{response: "   "}},
		{name: "error", generator: &stubGenerator{err: errors.New("quota exceeded")}},
		{name: "deadline", generator: &stubGenerator{err: context.DeadlineExceeded}},
		{name: "panic", generator: &stubGenerator{panicWith: "boom"}},
		{name: "json list", generator: &stubGenerator{response: `["Go"]`}},
		{name: "nil generator", generator: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			composer := NewComposer(tt.generator, fixedFallback, zap.NewNop())

			assessment, source := composer.Compose(context.Background(), "job", []string{"chunk"})
			if source != SourceFallback {
				t.Fatalf("expected fallback source, got %s", source)
			}
			if !reflect.DeepEqual(assessment, fixedFallback("job", nil)) {
				t.Fatalf("unexpected assessment: %+v", assessment)
			}
		})
	}
}

func TestComposeLogsFallbackReason(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: "not json"}
	composer := NewComposer(stub, fixedFallback, zap.New(core), WithMaxLogLength(5))

	composer.Compose(context.Background(), "job", []string{"chunk"})

	warnings := observed.FilterMessage("generator result not usable, using fallback").All()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}

	responses := observed.FilterMessage("generate content response").All()
	if len(responses) != 1 {
		t.Fatalf("expected response debug entry, got %d", len(responses))
	}
	if preview := responses[0].ContextMap()["response_preview"]; preview != "not j..." {
		t.Fatalf("expected truncated preview, got %q", preview)
	}
}

func TestBuildPromptCapsContext(t *testing.T) {
	t.Parallel()

	chunks := []string{"first chunk", "second chunk", "third chunk", "fourth chunk"}
	prompt := BuildPrompt("Senior Go engineer", chunks)

	if !strings.Contains(prompt, "Senior Go engineer") {
		t.Fatalf("job description missing from prompt: %s", prompt)
	}
	if !strings.Contains(prompt, "first chunk\nsecond chunk\nthird chunk") {
		t.Fatalf("expected first three chunks joined by newlines: %s", prompt)
	}
	if strings.Contains(prompt, "fourth chunk") {
		t.Fatalf("prompt must not include more than %d chunks", MaxContextChunks)
	}
	if !strings.Contains(prompt, `"Match Score": "78"`) {
		t.Fatalf("schema example missing from prompt: %s", prompt)
	}
}

func TestBuildPromptDoesNotExpandPlaceholdersInInput(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("mention {{RESUME_CONTEXT}} literally", []string{"ctx"})
	if !strings.Contains(prompt, "mention {{RESUME_CONTEXT}} literally") {
		t.Fatalf("placeholder inside job description was replaced: %s", prompt)
	}
}

type blockingGenerator struct {
	release chan struct{}
}

func (b *blockingGenerator) GenerateContent(context.Context, string) (string, error) {
	<-b.release
	return `{"Match Score": "99"}`, nil
}

func TestComposeFallsBackWhenGeneratorIgnoresDeadline(t *testing.T) {
	t.Parallel()

	gen := &blockingGenerator{release: make(chan struct{})}
	defer close(gen.release)

	composer := NewComposer(gen, fixedFallback, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assessment, source := composer.Compose(ctx, "job", []string{"chunk"})
	if source != SourceFallback || assessment.Score != 10 {
		t.Fatalf("expected fallback after deadline, got %s %+v", source, assessment)
	}
}
