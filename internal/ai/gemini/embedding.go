package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultEmbeddingModel = "text-embedding-004"

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// EmbeddingModel calls the Gemini embedding endpoint. The API pools tokens on
// its side, so a single row is returned per text.
type EmbeddingModel struct {
	models contentEmbedder
	model  string
	dim    int32
}

// NewEmbeddingModel creates an embedding model requesting vectors of width dim.
func NewEmbeddingModel(client *genai.Client, model string, dim int) (*EmbeddingModel, error) {
	if client == nil {
		return nil, errors.New("gemini client is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	return &EmbeddingModel{models: client.Models, model: model, dim: int32(dim)}, nil
}

// EmbedRaw embeds text. maxTokens is enforced by the caller before the request.
func (m *EmbeddingModel) EmbedRaw(ctx context.Context, text string, _ int) ([][]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}

	config := &genai.EmbedContentConfig{}
	if m.dim > 0 {
		config.OutputDimensionality = &m.dim
	}

	resp, err := m.models.EmbedContent(ctx, m.model, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embeddings")
	}

	return [][]float32{resp.Embeddings[0].Values}, nil
}

// Model returns the embedding model name.
func (m *EmbeddingModel) Model() string { return m.model }
