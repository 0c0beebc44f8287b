package embedding

import (
	"context"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of cached texts.
const DefaultCacheSize = 256

// Cached memoises embeddings by exact text. Results are only reused for the
// same wrapped embedder, whose output is deterministic for a given input.
type Cached struct {
	next  Embedder
	cache *lru.Cache[string, []float32]
}

// NewCached wraps next with an LRU cache holding up to size entries.
func NewCached(next Embedder, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Cached{next: next, cache: cache}, nil
}

// Embed returns a copy of the cached vector or computes and stores a new one.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return slices.Clone(vec), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(text, slices.Clone(vec))
	return vec, nil
}

// Dimension returns the wrapped embedder's dimension.
func (c *Cached) Dimension() int { return c.next.Dimension() }

// Len reports how many texts are cached.
func (c *Cached) Len() int { return c.cache.Len() }
