package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresCompletionKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "llama3-8b-8192", cfg.LLMModel)
	assert.InDelta(t, 0.1, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 0, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, "hashing", cfg.EmbeddingsProvider)
	assert.Equal(t, 384, cfg.EmbeddingDim)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "brotli", cfg.SessionCompression)
	assert.Equal(t, 1000, cfg.MaxSessions)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, "test-key", cfg.CompletionAPIKey())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("CHUNK_SIZE", "120")
	t.Setenv("CHUNK_OVERLAP", "20")
	t.Setenv("TOP_K", "3")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("LLM_TEMPERATURE", "not-a-float")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gem-key", cfg.CompletionAPIKey())
	assert.Equal(t, 120, cfg.ChunkSize)
	assert.Equal(t, 20, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.InDelta(t, 0.1, cfg.LLMTemperature, 1e-9, "unparseable values fall back to the default")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			LLMProvider:        "groq",
			GroqAPIKey:         "k",
			EmbeddingsProvider: "hashing",
			ChunkSize:          500,
			TopK:               5,
			EmbeddingDim:       384,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown llm provider", mutate: func(c *Config) { c.LLMProvider = "other" }, wantErr: "LLM_PROVIDER"},
		{name: "gemini embeddings without key", mutate: func(c *Config) { c.EmbeddingsProvider = "gemini" }, wantErr: "GEMINI_API_KEY"},
		{name: "openai embeddings without key", mutate: func(c *Config) { c.EmbeddingsProvider = "openai" }, wantErr: "EMBEDDINGS_API_KEY"},
		{name: "zero chunk size", mutate: func(c *Config) { c.ChunkSize = 0 }, wantErr: "CHUNK_SIZE"},
		{name: "zero top k", mutate: func(c *Config) { c.TopK = 0 }, wantErr: "TOP_K"},
		{name: "gzip sessions", mutate: func(c *Config) { c.SessionCompression = "gzip" }},
		{name: "unknown session compression", mutate: func(c *Config) { c.SessionCompression = "lz4" }, wantErr: "SESSION_COMPRESSION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
