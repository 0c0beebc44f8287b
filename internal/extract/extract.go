// Package extract turns uploaded documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrExtraction wraps every failure to obtain text from a document.
var ErrExtraction = errors.New("failed to extract text")

// Extractor reads a document and returns its text. The text may be empty when
// the document holds no extractable content; that is not an error.
type Extractor interface {
	Extract(ctx context.Context, name string, r io.Reader) (string, error)
}

// Plain reads UTF-8 text documents as they are.
type Plain struct{}

// Extract returns the content of r, replacing invalid UTF-8 sequences.
func (Plain) Extract(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w from %s: %v", ErrExtraction, name, err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return text, nil
}

// Router picks an extractor by file extension.
type Router struct {
	byExt    map[string]Extractor
	fallback Extractor
}

// NewRouter returns a router sending .pdf to pdf and text-like files to Plain.
func NewRouter(pdf Extractor) *Router {
	return &Router{
		byExt: map[string]Extractor{
			".pdf":  pdf,
			".txt":  Plain{},
			".md":   Plain{},
			".text": Plain{},
		},
	}
}

// Extract dispatches on the extension of name.
func (r *Router) Extract(ctx context.Context, name string, rd io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	extractor, ok := r.byExt[ext]
	if !ok || extractor == nil {
		extractor = r.fallback
	}
	if extractor == nil {
		return "", fmt.Errorf("%w from %s: unsupported file type %q", ErrExtraction, name, ext)
	}

	return extractor.Extract(ctx, name, rd)
}
