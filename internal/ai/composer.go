package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/resume-rag/internal/utils"
	"go.uber.org/zap"
)

// MaxContextChunks bounds how many retrieved chunks are placed in the prompt.
const MaxContextChunks = 3

const defaultMaxLogLength = 200

//go:embed prompt.md
var promptTemplate string

// Composer produces match assessments with a generative model and falls back
// to a deterministic scorer whenever the model output cannot be used.
type Composer struct {
	generator Generator
	fallback  FallbackFunc
	logger    *zap.Logger
	maxLogLen int
}

// ComposerOption customises a Composer.
type ComposerOption func(*Composer)

// WithMaxLogLength limits prompt and response previews in debug logs.
func WithMaxLogLength(n int) ComposerOption {
	return func(c *Composer) {
		if n > 0 {
			c.maxLogLen = n
		}
	}
}

// NewComposer builds a Composer. A nil generator makes every call use the
// fallback directly.
func NewComposer(generator Generator, fallback FallbackFunc, logger *zap.Logger, opts ...ComposerOption) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == nil {
		fallback = func(string, []string) MatchAssessment { return MatchAssessment{} }
	}

	c := &Composer{
		generator: generator,
		fallback:  fallback,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose returns an assessment for the job description and retrieved chunks.
// It never fails: generator errors, unusable output and panics all resolve to
// the fallback assessment.
func (c *Composer) Compose(ctx context.Context, jobDescription string, chunks []string) (assessment MatchAssessment, source Source) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("generator panicked, using fallback", zap.Any("panic", r))
			assessment, source = c.fallback(jobDescription, chunks), SourceFallback
		}
	}()

	parsed, err := c.generate(ctx, jobDescription, chunks)
	if err != nil {
		c.logger.Warn("generator result not usable, using fallback", zap.Error(err))
		return c.fallback(jobDescription, chunks), SourceFallback
	}

	return *parsed, SourceGenerative
}

func (c *Composer) generate(ctx context.Context, jobDescription string, chunks []string) (*MatchAssessment, error) {
	if c.generator == nil {
		return nil, fmt.Errorf("%w: generator is not configured", ErrGeneratorUnusable)
	}

	prompt := BuildPrompt(jobDescription, chunks)

	c.logger.Debug("generate content request",
		zap.Int("chunks", min(len(chunks), MaxContextChunks)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.Preview(prompt, c.maxLogLen)),
	)

	raw, err := c.call(ctx, prompt)
	if err != nil {
		return nil, errors.Join(ErrGeneratorUnusable, err)
	}

	c.logger.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.Preview(raw, c.maxLogLen)),
	)

	return ParseResponse(raw)
}

type generation struct {
	raw string
	err error
}

// call runs the generator in its own goroutine so a call that ignores ctx
// still returns once ctx is done.
func (c *Composer) call(ctx context.Context, prompt string) (string, error) {
	done := make(chan generation, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("generator panicked: %v", r)}
			}
		}()

		raw, err := c.generator.GenerateContent(ctx, prompt)
		done <- generation{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.raw, res.err
	}
}

// BuildPrompt fills the embedded template with the job description and at
// most MaxContextChunks retrieved chunks joined by newlines.
func BuildPrompt(jobDescription string, chunks []string) string {
	if len(chunks) > MaxContextChunks {
		chunks = chunks[:MaxContextChunks]
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job Description:\n{{JOB_DESCRIPTION}}\n\nResume Context:\n{{RESUME_CONTEXT}}\n"
	}

	return strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{RESUME_CONTEXT}}", strings.Join(chunks, "\n"),
	).Replace(template)
}
