// ABOUTME: Centralized configuration for the care-assistant backend
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/safetalk/safetalk/internal/models"
)

// Config holds all configuration for the assistant
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	EmbeddingModel string
	AssistantID    string // optional; enables the polling assistant backend
	MaxRetries     int
	RetryDelay     time.Duration

	// Completion backends, in fallback order. First entry is the primary.
	Backends []models.BackendDescriptor

	// Document store settings
	ChromaURL        string
	ChromaCollection string
	StoreTimeout     time.Duration

	// Ingestion settings
	ChunkSize    int
	ChunkOverlap int

	// Chat pipeline settings
	HistoryWindow int
	KPerSubquery  int
	KFinal        int

	// Asynchronous run polling
	PollFastInterval time.Duration
	PollSlowInterval time.Duration
	PollFastCount    int
	PollMaxCount     int

	// HTTP settings
	Port           int
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:   getEnv("SAFETALK_EMBEDDING_MODEL", "text-embedding-3-small"),
		AssistantID:      os.Getenv("SAFETALK_ASSISTANT_ID"),
		MaxRetries:       getEnvInt("SAFETALK_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("SAFETALK_RETRY_DELAY", 2*time.Second),
		ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "hybrid-rag-knowledge-base"),
		StoreTimeout:     getEnvDuration("CHROMA_TIMEOUT", 15*time.Second),
		ChunkSize:        getEnvInt("SAFETALK_CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("SAFETALK_CHUNK_OVERLAP", 200),
		HistoryWindow:    getEnvInt("SAFETALK_HISTORY_WINDOW", 4),
		KPerSubquery:     getEnvInt("SAFETALK_K_PER_SUBQUERY", 3),
		KFinal:           getEnvInt("SAFETALK_K_FINAL", 5),
		PollFastInterval: getEnvDuration("SAFETALK_POLL_FAST_INTERVAL", 50*time.Millisecond),
		PollSlowInterval: getEnvDuration("SAFETALK_POLL_SLOW_INTERVAL", 200*time.Millisecond),
		PollFastCount:    getEnvInt("SAFETALK_POLL_FAST_COUNT", 40),
		PollMaxCount:     getEnvInt("SAFETALK_POLL_MAX_COUNT", 600),
		Port:             getEnvInt("PORT", 8080),
		AllowedOrigins:   splitList(getEnv("SAFETALK_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	backends, err := parseBackends(getEnv("SAFETALK_MODELS", "gpt-4o-mini:800:0.7"))
	if err != nil {
		return nil, err
	}
	// A configured assistant becomes the default primary.
	if cfg.AssistantID != "" {
		backends = append([]models.BackendDescriptor{{
			Name:        "assistant",
			MaxTokens:   getEnvInt("SAFETALK_ASSISTANT_MAX_TOKENS", 800),
			Temperature: getEnvFloat("SAFETALK_ASSISTANT_TEMPERATURE", 0.7),
		}}, backends...)
	}
	for i := range backends {
		backends[i].Priority = i
	}
	cfg.Backends = backends

	return cfg, cfg.Validate()
}

// Validate fails fast on configuration that cannot be recovered at request time
func (c *Config) Validate() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if len(c.Backends) == 0 {
		return fmt.Errorf("at least one completion backend must be configured")
	}
	seen := make(map[string]bool, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("backend name cannot be empty")
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate backend name %q", b.Name)
		}
		seen[b.Name] = true
		if b.MaxTokens <= 0 {
			return fmt.Errorf("backend %q: max tokens must be positive, got %d", b.Name, b.MaxTokens)
		}
		if b.Temperature < 0 || b.Temperature > 2 {
			return fmt.Errorf("backend %q: temperature must be 0-2, got %f", b.Name, b.Temperature)
		}
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	// Chunk boundaries land past the window midpoint, so overlap must stay
	// under size/2 for the window to always advance.
	if c.ChunkOverlap < 0 || c.ChunkOverlap*2 >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, size/2), got %d for size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history window cannot be negative, got %d", c.HistoryWindow)
	}
	if c.KPerSubquery <= 0 || c.KFinal <= 0 {
		return fmt.Errorf("retrieval k values must be positive, got %d/%d", c.KPerSubquery, c.KFinal)
	}
	if c.PollFastInterval <= 0 || c.PollSlowInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.PollFastCount < 0 || c.PollMaxCount <= 0 {
		return fmt.Errorf("poll counts must be positive, got %d/%d", c.PollFastCount, c.PollMaxCount)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("SAFETALK_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// parseBackends parses a comma-separated list of name:maxTokens:temperature entries
func parseBackends(spec string) ([]models.BackendDescriptor, error) {
	var backends []models.BackendDescriptor
	for _, entry := range splitList(spec) {
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid backend entry %q, want name:maxTokens:temperature", entry)
		}
		maxTokens, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid max tokens in backend entry %q: %w", entry, err)
		}
		temperature, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid temperature in backend entry %q: %w", entry, err)
		}
		backends = append(backends, models.BackendDescriptor{
			Name:        parts[0],
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
	}
	return backends, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
