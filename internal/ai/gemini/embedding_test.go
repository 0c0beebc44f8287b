package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeEmbedder struct {
	resp   *genai.EmbedContentResponse
	err    error
	model  string
	config *genai.EmbedContentConfig
}

func (f *fakeEmbedder) EmbedContent(_ context.Context, model string, _ []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func TestEmbeddingModelReturnsSingleRow(t *testing.T) {
	fake := &fakeEmbedder{resp: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2, 0.3}}},
	}}
	m := &EmbeddingModel{models: fake, model: "text-embedding-004", dim: 3}

	rows, err := m.EmbedRaw(context.Background(), "golang", 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if fake.config.OutputDimensionality == nil || *fake.config.OutputDimensionality != 3 {
		t.Fatalf("expected output dimensionality to be requested")
	}
	if fake.model != "text-embedding-004" {
		t.Fatalf("unexpected model: %s", fake.model)
	}
}

func TestEmbeddingModelErrors(t *testing.T) {
	m := &EmbeddingModel{models: &fakeEmbedder{err: errors.New("boom")}, model: "m"}
	if _, err := m.EmbedRaw(context.Background(), "text", 0); err == nil {
		t.Fatal("expected api error to propagate")
	}

	m = &EmbeddingModel{models: &fakeEmbedder{resp: &genai.EmbedContentResponse{}}, model: "m"}
	if _, err := m.EmbedRaw(context.Background(), "text", 0); err == nil {
		t.Fatal("expected error for empty embeddings")
	}

	if _, err := m.EmbedRaw(context.Background(), "  ", 0); err == nil {
		t.Fatal("expected error for empty text")
	}
}
