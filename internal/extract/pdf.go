package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"go.uber.org/zap"
)

const defaultPDFTimeout = 30 * time.Second

// PDF extracts text with the eino PDF parser. Pages are concatenated without
// separators.
type PDF struct {
	parser  *pdf.PDFParser
	timeout time.Duration
	logger  *zap.Logger
}

// NewPDF creates a PDF extractor.
func NewPDF(ctx context.Context, logger *zap.Logger) (*PDF, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &PDF{parser: p, timeout: defaultPDFTimeout, logger: logger}, nil
}

// Extract parses r as a PDF document.
func (p *PDF) Extract(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	docs, err := p.parser.Parse(ctx, r, einoparser.WithURI(name))
	if err != nil {
		return "", fmt.Errorf("%w from %s: %v", ErrExtraction, name, err)
	}

	var b strings.Builder
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		b.WriteString(doc.Content)
	}

	p.logger.Debug("pdf text extracted",
		zap.String("name", name),
		zap.Int("documents", len(docs)),
		zap.Int("text_length", b.Len()),
		zap.Duration("took", time.Since(started)),
	)

	return b.String(), nil
}
