package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/spigell/resume-rag/internal/embedding"
)

// ErrEmptyIndex is returned when searching an index without entries.
var ErrEmptyIndex = errors.New("vector index is empty")

// Searcher is the contract the pipeline depends on. Any replacement, including
// approximate indexes, must keep the ascending-distance order and the
// insertion-order tie break.
type Searcher interface {
	Insert(vec []float32, text, ownerID string) error
	Search(query []float32, k int) ([]Result, error)
	Len() int
}

// Result is a single nearest-neighbour hit.
type Result struct {
	Position int
	Text     string
	OwnerID  string
	Distance float32
}

// Index is an exact, in-memory L2 index. Embeddings, texts and owner ids are
// kept in parallel slices; position i in each refers to the same chunk.
type Index struct {
	mu         sync.RWMutex
	dim        int
	embeddings [][]float32
	texts      []string
	owners     []string
}

var _ Searcher = (*Index)(nil)

// New creates an empty index for vectors of width dim.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Insert appends a chunk. The vector is copied so callers may reuse it.
func (ix *Index) Insert(vec []float32, text, ownerID string) error {
	if len(vec) != ix.dim {
		return fmt.Errorf("%w: got %d, index expects %d", embedding.ErrDimensionMismatch, len(vec), ix.dim)
	}

	stored := slices.Clone(vec)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.embeddings = append(ix.embeddings, stored)
	ix.texts = append(ix.texts, text)
	ix.owners = append(ix.owners, ownerID)

	return nil
}

// Search returns up to k entries closest to query by Euclidean distance,
// ordered by ascending distance. Equal distances keep insertion order.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d, index expects %d", embedding.ErrDimensionMismatch, len(query), ix.dim)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.embeddings) == 0 {
		return nil, ErrEmptyIndex
	}
	if k <= 0 {
		return []Result{}, nil
	}

	type scored struct {
		pos  int
		dist float64
	}

	candidates := make([]scored, len(ix.embeddings))
	for i, vec := range ix.embeddings {
		candidates[i] = scored{pos: i, dist: squaredL2(query, vec)}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].dist < candidates[b].dist
	})

	k = min(k, len(candidates))
	results := make([]Result, 0, k)
	for _, c := range candidates[:k] {
		results = append(results, Result{
			Position: c.pos,
			Text:     ix.texts[c.pos],
			OwnerID:  ix.owners[c.pos],
			Distance: float32(math.Sqrt(c.dist)),
		})
	}

	return results, nil
}

// Len returns the number of stored chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.embeddings)
}

// Dimension returns the vector width accepted by the index.
func (ix *Index) Dimension() int { return ix.dim }

// Owners counts stored chunks per upload id.
func (ix *Index) Owners() map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	counts := make(map[string]int)
	for _, owner := range ix.owners {
		counts[owner]++
	}
	return counts
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
