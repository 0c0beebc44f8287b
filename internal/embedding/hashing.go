package embedding

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
)

// hashesPerToken spreads each token over several buckets to reduce collisions.
const hashesPerToken = 4

// Hashing is a deterministic, offline embedding model based on feature
// hashing. Every token maps to a sparse signed vector, so texts sharing words
// end up close to each other after pooling.
type Hashing struct {
	dim int
}

// NewHashing returns a hashing model producing vectors of width dim.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Hashing{dim: dim}
}

// EmbedRaw returns one vector per token. Text without tokens yields a single
// zero vector so that pooling still has a row to work with.
func (h *Hashing) EmbedRaw(ctx context.Context, text string, maxTokens int) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.ToLower(text))
	if maxTokens > 0 && len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}

	if len(tokens) == 0 {
		return [][]float32{make([]float32, h.dim)}, nil
	}

	rows := make([][]float32, 0, len(tokens))
	for _, token := range tokens {
		rows = append(rows, h.tokenVector(token))
	}

	return rows, nil
}

func (h *Hashing) tokenVector(token string) []float32 {
	vec := make([]float32, h.dim)
	for i := 0; i < hashesPerToken; i++ {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(token))
		_, _ = hasher.Write([]byte("#" + strconv.Itoa(i)))
		sum := hasher.Sum64()

		bucket := int(sum % uint64(h.dim))
		if sum&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}
	return vec
}
