// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	SessionBackend string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string

	Gemini GeminiConfig
	Qdrant QdrantConfig
}

// GeminiConfig controls the Gemini API collaborator. Policy answering
// is disabled when the API key is empty.
type GeminiConfig struct {
	APIKey        string
	EmbedModel    string
	GenerateModel string
}

// QdrantConfig controls the policy document vector index.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	vectorSize := getEnvInt("QDRANT_VECTOR_SIZE", 3072)
	if vectorSize <= 0 {
		vectorSize = 3072
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/hr.db"),

		SessionBackend: getEnv("SESSION_BACKEND", SessionBackendMemory),
		SessionTTL:     24 * time.Hour,
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		Gemini: GeminiConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			EmbedModel:    getEnv("GEMINI_EMBED_MODEL", "gemini-embedding-001"),
			GenerateModel: getEnv("GEMINI_MODEL", "gemini-flash-latest"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "hr_policies"),
			VectorSize: vectorSize,
		},
	}

	if ttl := getEnvInt("SESSION_TTL_MINUTES", 0); ttl > 0 {
		cfg.SessionTTL = time.Duration(ttl) * time.Minute
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q", SessionBackendMemory, SessionBackendRedis)
	}
	if c.SessionBackend == SessionBackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty when SESSION_BACKEND=redis")
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("QDRANT_COLLECTION cannot be empty")
	}
	return nil
}

// PolicyAnswerEnabled reports whether the RAG collaborator is
// configured.
func (c *Config) PolicyAnswerEnabled() bool {
	return c.Gemini.APIKey != "" && c.Qdrant.URL != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
