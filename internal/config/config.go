package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxFileSize int64
	StaticDir   string
	ServiceName string

	// Retrieval pipeline
	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// Completion (LLM)
	LLMProvider     string // "groq" (default, OpenAI-compatible) or "gemini"
	GroqAPIKey      string
	LLMBaseURL      string
	LLMModel        string
	LLMTemperature  float64
	LLMTimeout      time.Duration
	LLMRateLimitRPM int

	// Embeddings configuration
	EmbeddingsProvider    string // "hashing" (default), "gemini", "openai"
	EmbeddingDim          int
	EmbeddingCacheSize    int
	GeminiAPIKey          string
	GeminiModel           string
	GoogleEmbeddingsModel string
	EmbeddingsBaseURL     string
	EmbeddingsAPIKey      string
	EmbeddingsModel       string

	// Sessions
	SessionTTL         time.Duration
	SessionCompression string // Redis payloads: "none", "gzip" or "brotli"
	MaxSessions        int    // in-memory store only; 0 = unlimited

	// Redis Configuration (empty RedisURL keeps sessions in memory)
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RateLimitReqs   int
	RateLimitWindow int

	// MongoDB transcripts (empty MongoURI disables them)
	MongoURI string
	DBName   string

	// OpenTelemetry
	OTLPEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 20971520), // 20MB
		StaticDir:   getEnv("STATIC_DIR", "./static"),
		ServiceName: getEnv("SERVICE_NAME", "pdf-rag-chatbot"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
		TopK:         getEnvInt("TOP_K", 5),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:        getEnv("LLM_MODEL", "llama3-8b-8192"),
		LLMTemperature:  getEnvFloat64("LLM_TEMPERATURE", 0.1),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		LLMRateLimitRPM: getEnvInt("LLM_RATE_LIMIT_RPM", 30),

		EmbeddingsProvider:    strings.ToLower(getEnv("EMBEDDINGS_PROVIDER", "hashing")),
		EmbeddingDim:          getEnvInt("EMBEDDING_DIM", 384),
		EmbeddingCacheSize:    getEnvInt("EMBEDDING_CACHE_SIZE", 4096),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		EmbeddingsBaseURL:     getEnv("EMBEDDINGS_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingsAPIKey:      getEnv("EMBEDDINGS_API_KEY", ""),
		EmbeddingsModel:       getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),

		SessionTTL:         getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionCompression: strings.ToLower(getEnv("SESSION_COMPRESSION", "brotli")),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 1000),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		MongoURI: getEnv("MONGO_URI", ""),
		DBName:   getEnv("DB_NAME", "pdf_rag_chatbot"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required secrets and pipeline bounds.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required - set it in the environment or .env file")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER: %s", c.LLMProvider)
	}

	switch c.EmbeddingsProvider {
	case "hashing":
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when EMBEDDINGS_PROVIDER=gemini")
		}
	case "openai":
		if c.EmbeddingsAPIKey == "" {
			return fmt.Errorf("EMBEDDINGS_API_KEY is required when EMBEDDINGS_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown EMBEDDINGS_PROVIDER: %s", c.EmbeddingsProvider)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	switch c.SessionCompression {
	case "", "none", "gzip", "brotli":
	default:
		return fmt.Errorf("unknown SESSION_COMPRESSION: %s", c.SessionCompression)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}

	return nil
}

// CompletionAPIKey returns the credential for the configured LLM provider.
func (c *Config) CompletionAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.GroqAPIKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
