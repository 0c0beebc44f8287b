// Package uploads persists raw resume files before their text is indexed.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxFileSize is the largest accepted upload in bytes.
const DefaultMaxFileSize = 10 << 20

var ErrFileTooLarge = errors.New("file too large")

// Backend writes one object under a key.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// Store assigns ids to uploads and hands them to a backend.
type Store struct {
	backend Backend
	maxSize int64
	logger  *zap.Logger
	newID   func() string
}

// NewStore creates a store. A non-positive maxSize selects DefaultMaxFileSize.
func NewStore(backend Backend, maxSize int64, logger *zap.Logger) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		backend: backend,
		maxSize: maxSize,
		logger:  logger,
		newID:   func() string { return uuid.New().String() },
	}
}

// Save stores data and returns the upload id.
func (s *Store) Save(ctx context.Context, ext string, data []byte) (string, error) {
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, len(data), s.maxSize)
	}

	ext = normalizeExt(ext)
	id := s.newID()
	key := id + ext

	if err := s.backend.Put(ctx, key, ContentType(ext), data); err != nil {
		return "", fmt.Errorf("store upload %s: %w", id, err)
	}

	s.logger.Debug("upload stored",
		zap.String("upload_id", id),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return id, nil
}

// ContentType maps a file extension to a MIME type.
func ContentType(ext string) string {
	switch normalizeExt(ext) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".text":
		return "text/plain"
	case ".md":
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
