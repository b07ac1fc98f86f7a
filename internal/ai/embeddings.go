package ai

import (
	"context"
	"fmt"
	"io"

	"pdf-rag-chatbot/internal/config"
	"pdf-rag-chatbot/internal/telemetry"
)

// Embedder maps text to fixed-length vectors. The same embedder must be used
// for indexing chunks and for embedding questions against that index.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder builds the configured embedding provider, wrapped in an LRU cache
// when EMBEDDING_CACHE_SIZE > 0.
func NewEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	var (
		base Embedder
		err  error
	)

	switch cfg.EmbeddingsProvider {
	case "hashing":
		base = NewHashingEmbedder(cfg.EmbeddingDim)
	case "gemini":
		base, err = NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	case "openai":
		base, err = NewOpenAIEmbedder(OpenAIEmbedderConfig{
			BaseURL: cfg.EmbeddingsBaseURL,
			APIKey:  cfg.EmbeddingsAPIKey,
			Model:   cfg.EmbeddingsModel,
			Timeout: cfg.LLMTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EmbeddingCacheSize > 0 {
		return NewCachingEmbedder(base, cfg.EmbeddingCacheSize), nil
	}
	return base, nil
}

// NewCompleter builds the configured LLM provider behind the rate limiter and
// circuit breaker.
func NewCompleter(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (Completer, error) {
	var (
		base Completer
		err  error
	)

	switch cfg.LLMProvider {
	case "groq":
		base, err = NewChatCompletionsClient(cfg.CompletionAPIKey(), cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout)
	case "gemini":
		base, err = NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
	if err != nil {
		return nil, err
	}

	return NewResilientCompleter(base, cfg.LLMProvider, cfg.LLMRateLimitRPM, metrics), nil
}

// Close releases v when it holds resources, as the Gemini clients do. Values
// without a Close method are ignored.
func Close(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
