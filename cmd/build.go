package cmd

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
	"github.com/spigell/resume-rag/internal/ai"
	"github.com/spigell/resume-rag/internal/ai/gemini"
	"github.com/spigell/resume-rag/internal/ai/openai"
	"github.com/spigell/resume-rag/internal/embedding"
	"github.com/spigell/resume-rag/internal/extract"
	"github.com/spigell/resume-rag/internal/logger"
	"github.com/spigell/resume-rag/internal/progress"
	"github.com/spigell/resume-rag/internal/rag"
	"github.com/spigell/resume-rag/internal/scoring"
	"github.com/spigell/resume-rag/internal/secrets"
	"github.com/spigell/resume-rag/internal/uploads"
	"github.com/spigell/resume-rag/internal/vectorindex"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	providerLocal  = "local"
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// providers lazily creates API clients shared by the embedder and the generator.
type providers struct {
	config *Config
	gemini *genai.Client
	openai *goopenai.Client
}

func (p *providers) geminiClient(ctx context.Context) (*genai.Client, error) {
	if p.gemini != nil {
		return p.gemini, nil
	}

	cfg := p.config.AI.Gemini
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	p.gemini = client
	return client, nil
}

func (p *providers) openaiClient() (*goopenai.Client, error) {
	if p.openai != nil {
		return p.openai, nil
	}

	cfg := p.config.AI.OpenAI
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "openai api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "OPENAI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
	}

	client, err := openai.NewClient(apiKey, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	p.openai = client
	return client, nil
}

func normalizeProvider(provider, fallback string) string {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return fallback
	}
	return provider
}

// newEmbedder builds the configured embedding model, wraps it with pooling and
// caching, and checks the produced width once.
func newEmbedder(ctx context.Context, cfg *EmbeddingConfig, clients *providers, log *zap.Logger) (embedding.Embedder, error) {
	provider := normalizeProvider(cfg.Provider, providerLocal)

	dim := cfg.Dimension
	if dim <= 0 {
		dim = embedding.DefaultDimension
	}

	var (
		model     embedding.Model
		modelName = cfg.Model
	)

	switch provider {
	case providerLocal:
		model = embedding.NewHashing(dim)
		modelName = "hashing"
	case providerGemini:
		client, err := clients.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		m, err := gemini.NewEmbeddingModel(client, cfg.Model, dim)
		if err != nil {
			return nil, err
		}
		model, modelName = m, m.Model()
	case providerOpenAI:
		client, err := clients.openaiClient()
		if err != nil {
			return nil, err
		}
		m := openai.NewEmbeddingModel(client, cfg.Model, dim)
		model, modelName = m, m.Model()
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	embedLogger := logger.WithCommonFields(logger.Component(log, "embedding"), provider, modelName)

	var embedder embedding.Embedder = embedding.NewPooled(model, dim, cfg.MaxTokens, embedLogger)
	if cfg.CacheSize > 0 {
		cached, err := embedding.NewCached(embedder, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		embedder = cached
	}

	if err := embedding.Probe(ctx, embedder); err != nil {
		return nil, fmt.Errorf("probe %s embedding model: %w", provider, err)
	}

	embedLogger.Debug("embedding model ready", zap.Int("dimension", dim))

	return embedder, nil
}

// newGenerator returns nil when generation is disabled.
func newGenerator(ctx context.Context, cfg *AIConfig, clients *providers, log *zap.Logger) (ai.Generator, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch provider := normalizeProvider(cfg.Provider, providerGemini); provider {
	case providerGemini:
		client, err := clients.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		generator, err := gemini.NewGenerator(client, cfg.Gemini.Model, cfg.Gemini.MaxRetries, cfg.Gemini.MaxOutputTokens,
			log.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
		if err != nil {
			return nil, err
		}
		return generator, nil
	case providerOpenAI:
		client, err := clients.openaiClient()
		if err != nil {
			return nil, err
		}
		return openai.NewGenerator(client, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, log), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newUploadStore(ctx context.Context, cfg *UploadsConfig, fs afero.Fs, log *zap.Logger) (*uploads.Store, error) {
	storeLogger := logger.Component(log, "uploads")

	var backend uploads.Backend
	switch backendName := normalizeProvider(cfg.Backend, "disk"); backendName {
	case "disk":
		disk, err := uploads.NewDiskBackend(fs, cfg.Dir)
		if err != nil {
			return nil, err
		}
		backend = disk
	case "minio":
		secretKey, err := secrets.Load(secrets.Source{
			Name: "minio secret key",
			File: cfg.Minio.SecretKeyFile,
			Env:  "MINIO_SECRET_KEY",
		})
		if err != nil {
			return nil, err
		}
		minioBackend, err := uploads.NewMinioBackend(ctx, uploads.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: secretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		}, storeLogger)
		if err != nil {
			return nil, err
		}
		backend = minioBackend
	default:
		return nil, fmt.Errorf("unsupported uploads backend: %s", cfg.Backend)
	}

	return uploads.NewStore(backend, cfg.MaxFileSize, storeLogger), nil
}

// newSession wires every component of the pipeline from config.
func newSession(ctx context.Context, config *Config, fs afero.Fs, log *zap.Logger) (*session, error) {
	clients := &providers{config: config}

	embedder, err := newEmbedder(ctx, config.Embedding, clients, log)
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	generator, err := newGenerator(ctx, config.AI, clients, log)
	if err != nil {
		log.Warn("generative feedback disabled, using keyword scoring", zap.Error(err))
		generator = nil
	}

	composer := ai.NewComposer(generator, scoring.Assess, log, ai.WithMaxLogLength(config.AI.MaxLogLength))

	opts := []rag.Option{
		rag.WithChunkWords(config.Chunking.MaxWords),
		rag.WithTopK(config.Retrieval.TopK),
		rag.WithGenerateTimeout(config.AI.Timeout),
	}
	if bar := progress.New("embedding"); bar != nil {
		opts = append(opts, rag.WithProgress(bar))
	}

	pipeline := rag.New(vectorindex.New(embedder.Dimension()), embedder, composer, log, opts...)

	store, err := newUploadStore(ctx, config.Uploads, fs, log)
	if err != nil {
		return nil, fmt.Errorf("building upload store: %w", err)
	}

	pdf, err := extract.NewPDF(ctx, logger.Component(log, "extract"))
	if err != nil {
		return nil, err
	}

	return &session{
		pipeline:  pipeline,
		store:     store,
		extractor: extract.NewRouter(pdf),
		fs:        fs,
		logger:    log,
	}, nil
}
