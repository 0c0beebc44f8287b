// Package openai adapts OpenAI-compatible APIs to the generator and embedding
// model contracts.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-rag/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultChatModel      = openai.GPT4oMini
	defaultEmbeddingModel = string(openai.SmallEmbedding3)
	defaultMaxTokens      = 300
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type embeddingsCreator interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// NewClient returns an API client. baseURL may point at any OpenAI-compatible
// server; empty keeps the default endpoint.
func NewClient(apiKey, baseURL string) (*openai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(cfg), nil
}

// Generator produces completions with the chat API.
type Generator struct {
	client    chatCompleter
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewGenerator wraps client for model. maxTokens bounds the answer length.
func NewGenerator(client *openai.Client, model string, maxTokens int, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultChatModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Generator{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.WithCommonFields(log, "openai", model),
	}
}

// GenerateContent returns the first choice of a JSON-mode chat completion.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	g.logger.Debug("openai completion finished",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}

	return output, nil
}

// Model returns the configured chat model.
func (g *Generator) Model() string { return g.model }

// EmbeddingModel calls the embeddings endpoint; one pooled row per text.
type EmbeddingModel struct {
	client embeddingsCreator
	model  string
	dim    int
}

// NewEmbeddingModel wraps client. dim is forwarded to models that support
// shortened embeddings.
func NewEmbeddingModel(client *openai.Client, model string, dim int) *EmbeddingModel {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	return &EmbeddingModel{client: client, model: model, dim: dim}
}

// EmbedRaw embeds text. Token limits are applied by the caller.
func (m *EmbeddingModel) EmbedRaw(ctx context.Context, text string, _ int) ([][]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("cannot embed empty text")
	}

	resp, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(m.model),
		Input:      []string{text},
		Dimensions: m.dim,
	})
	if err != nil {
		return nil, fmt.Errorf("openai create embeddings: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("openai api returned no embedding data")
	}

	row := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		row[i] = float32(v)
	}

	return [][]float32{row}, nil
}

// Model returns the embedding model name.
func (m *EmbeddingModel) Model() string { return m.model }
