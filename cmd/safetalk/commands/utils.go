// ABOUTME: Shared setup helpers for CLI commands
// ABOUTME: Builds the configured embedding client and vector store connection
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/safetalk/safetalk/internal/config"
	"github.com/safetalk/safetalk/internal/llm"
	"github.com/safetalk/safetalk/internal/store"
)

// openStore loads configuration and connects to the vector store. Unlike the
// server, CLI commands treat an unreachable store as a hard error.
func openStore(ctx context.Context) (*store.ChromaStore, *config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	chroma := store.NewChromaStore(store.ChromaConfig{
		URL:        cfg.ChromaURL,
		Collection: cfg.ChromaCollection,
		Timeout:    cfg.StoreTimeout,
	}, client)
	if err := chroma.Init(ctx); err != nil {
		return nil, nil, fmt.Errorf("connecting to vector store: %w", err)
	}

	return chroma, cfg, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}
