package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/resume-rag/internal/ai"
	"github.com/spigell/resume-rag/internal/chunker"
	"github.com/spigell/resume-rag/internal/embedding"
	"github.com/spigell/resume-rag/internal/logger"
	"github.com/spigell/resume-rag/internal/vectorindex"
	"go.uber.org/zap"
)

const (
	// DefaultTopK is how many chunks are retrieved for a job description.
	DefaultTopK = 3
	// DefaultGenerateTimeout bounds a single generator call.
	DefaultGenerateTimeout = 60 * time.Second
)

// ErrNoResumes is returned by Analyze before any resume chunk was indexed.
var ErrNoResumes = fmt.Errorf("no resumes uploaded: %w", vectorindex.ErrEmptyIndex)

// ErrEmptyJobDescription is returned by Analyze for blank job text.
var ErrEmptyJobDescription = errors.New("job description is empty")

// Progress receives per-chunk updates while a resume is embedded.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// Stats summarises the index contents.
type Stats struct {
	Chunks  int
	Uploads map[string]int
}

type ownerCounter interface {
	Owners() map[string]int
}

// Pipeline wires chunking, embedding and retrieval to the feedback composer.
// The index is the only shared mutable state; it arbitrates its own locking so
// model calls never run inside a critical section.
type Pipeline struct {
	index           vectorindex.Searcher
	embedder        embedding.Embedder
	composer        *ai.Composer
	logger          *zap.Logger
	chunkWords      int
	topK            int
	generateTimeout time.Duration
	progress        Progress
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithChunkWords sets the chunk size in words.
func WithChunkWords(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.chunkWords = n
		}
	}
}

// WithTopK sets how many chunks are retrieved per query.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithGenerateTimeout bounds the generator call; on expiry the fallback scorer answers.
func WithGenerateTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.generateTimeout = d
		}
	}
}

// WithProgress reports embedding progress for each AddResume call.
func WithProgress(progress Progress) Option {
	return func(p *Pipeline) {
		p.progress = progress
	}
}

// New creates a pipeline around an existing index.
func New(index vectorindex.Searcher, embedder embedding.Embedder, composer *ai.Composer, log *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		index:           index,
		embedder:        embedder,
		composer:        composer,
		logger:          logger.Component(log, "pipeline"),
		chunkWords:      chunker.DefaultMaxWords,
		topK:            DefaultTopK,
		generateTimeout: DefaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddResume chunks text, embeds every non-blank chunk and stores it under
// uploadID. It returns the number of chunks added; on failure the count covers
// the chunks stored before the error.
func (p *Pipeline) AddResume(ctx context.Context, uploadID, text string) (int, error) {
	chunks := chunker.Split(text, p.chunkWords)

	if p.progress != nil {
		p.progress.Start(len(chunks))
		defer p.progress.Finish()
	}

	added := 0
	for i, chunk := range chunks {
		if p.progress != nil {
			p.progress.Increment()
		}

		if strings.TrimSpace(chunk) == "" {
			continue
		}

		vec, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return added, fmt.Errorf("embed chunk %d of upload %s: %w", i, uploadID, err)
		}

		if err := p.index.Insert(vec, chunk, uploadID); err != nil {
			return added, fmt.Errorf("index chunk %d of upload %s: %w", i, uploadID, err)
		}
		added++
	}

	p.logger.Info("resume indexed",
		zap.String(logger.FieldUploadID, uploadID),
		zap.Int("chunks_added", added),
		zap.Int("index_size", p.index.Len()),
	)

	return added, nil
}

// Analyze assesses the indexed resumes against jobDescription and returns the
// formatted feedback.
func (p *Pipeline) Analyze(ctx context.Context, jobDescription string) (string, error) {
	assessment, _, err := p.Assess(ctx, jobDescription)
	if err != nil {
		return "", err
	}
	return ai.Format(assessment), nil
}

// Assess is Analyze without formatting. It also reports which path produced
// the assessment.
func (p *Pipeline) Assess(ctx context.Context, jobDescription string) (ai.MatchAssessment, ai.Source, error) {
	if p.index.Len() == 0 {
		return ai.MatchAssessment{}, "", ErrNoResumes
	}
	if strings.TrimSpace(jobDescription) == "" {
		return ai.MatchAssessment{}, "", ErrEmptyJobDescription
	}

	query, err := p.embedder.Embed(ctx, jobDescription)
	if err != nil {
		return ai.MatchAssessment{}, "", fmt.Errorf("embed job description: %w", err)
	}

	results, err := p.index.Search(query, p.topK)
	if errors.Is(err, vectorindex.ErrEmptyIndex) {
		return ai.MatchAssessment{}, "", ErrNoResumes
	}
	if err != nil {
		return ai.MatchAssessment{}, "", fmt.Errorf("search index: %w", err)
	}

	retrieved := make([]string, 0, len(results))
	for _, r := range results {
		retrieved = append(retrieved, r.Text)
	}

	p.logger.Debug("retrieved resume context", zap.Int("chunks", len(retrieved)))

	genCtx, cancel := context.WithTimeout(ctx, p.generateTimeout)
	defer cancel()

	assessment, source := p.composer.Compose(genCtx, jobDescription, retrieved)

	p.logger.Info("job description analyzed",
		zap.String(logger.FieldSource, string(source)),
		zap.Int("score", assessment.Score),
		zap.Int("chunks", len(retrieved)),
	)

	return assessment, source, nil
}

// Stats reports how many chunks are indexed, per upload when the index can tell.
func (p *Pipeline) Stats() Stats {
	stats := Stats{Chunks: p.index.Len()}
	if counter, ok := p.index.(ownerCounter); ok {
		stats.Uploads = counter.Owners()
	}
	return stats
}
