package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultDimension matches gte-base sized models.
	DefaultDimension = 768
	// DefaultMaxTokens is the input limit applied before a text reaches the model.
	DefaultMaxTokens = 512

	probeText = "embedding dimension probe"
)

var (
	// ErrDimensionMismatch reports a vector whose width differs from the configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmptyOutput is returned when a model produces no vectors for a text.
	ErrEmptyOutput = errors.New("embedding model returned no vectors")
)

// Model is the raw embedding backend. It returns one vector per token, or a
// single already pooled vector for hosted APIs.
type Model interface {
	EmbedRaw(ctx context.Context, text string, maxTokens int) ([][]float32, error)
}

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Pooled reduces per-token model output to a single vector by mean pooling.
type Pooled struct {
	model     Model
	dim       int
	maxTokens int
	logger    *zap.Logger
}

// NewPooled wraps model. Non-positive dim and maxTokens fall back to the defaults.
func NewPooled(model Model, dim, maxTokens int, logger *zap.Logger) *Pooled {
	if dim <= 0 {
		dim = DefaultDimension
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pooled{model: model, dim: dim, maxTokens: maxTokens, logger: logger}
}

// Embed truncates text to the token limit, embeds it and mean-pools the rows.
// Text beyond the limit is dropped silently apart from a debug log entry.
func (p *Pooled) Embed(ctx context.Context, text string) ([]float32, error) {
	truncated, dropped := Truncate(text, p.maxTokens)
	if dropped > 0 {
		p.logger.Debug("embedding input truncated",
			zap.Int("max_tokens", p.maxTokens),
			zap.Int("dropped_tokens", dropped),
		)
	}

	rows, err := p.model.EmbedRaw(ctx, truncated, p.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	return MeanPool(rows, p.dim)
}

// Dimension returns the configured vector width.
func (p *Pooled) Dimension() int { return p.dim }

// MeanPool averages rows element-wise. Every row must have width dim.
func MeanPool(rows [][]float32, dim int) ([]float32, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyOutput
	}

	sums := make([]float64, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has width %d, expected %d", ErrDimensionMismatch, i, len(row), dim)
		}
		for j, v := range row {
			sums[j] += float64(v)
		}
	}

	out := make([]float32, dim)
	n := float64(len(rows))
	for j, s := range sums {
		out[j] = float32(s / n)
	}

	return out, nil
}

// Truncate keeps the first maxTokens whitespace-delimited tokens of text and
// reports how many were dropped. Text within the limit is returned unchanged.
func Truncate(text string, maxTokens int) (string, int) {
	if maxTokens <= 0 {
		return text, 0
	}

	tokens := strings.Fields(text)
	if len(tokens) <= maxTokens {
		return text, 0
	}

	return strings.Join(tokens[:maxTokens], " "), len(tokens) - maxTokens
}

// Probe embeds a fixed text and checks the result width. It is meant for
// startup validation so a misconfigured model fails before serving requests.
func Probe(ctx context.Context, e Embedder) error {
	vec, err := e.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("probe embedder: %w", err)
	}

	if len(vec) != e.Dimension() {
		return fmt.Errorf("%w: model produced %d, configured %d", ErrDimensionMismatch, len(vec), e.Dimension())
	}

	return nil
}
