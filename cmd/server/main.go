// ABOUTME: Main entry point for the chat API server
// ABOUTME: Wires config, backends, vector store, and the gin router together
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/safetalk/safetalk/internal/config"
	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/llm"
	"github.com/safetalk/safetalk/internal/server"
	"github.com/safetalk/safetalk/internal/store"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}

	backends := make([]llm.Backend, 0, len(cfg.Backends))
	for _, desc := range cfg.Backends {
		if desc.Name == "assistant" && cfg.AssistantID != "" {
			backends = append(backends, client.AssistantBackend(cfg.AssistantID, desc))
		} else {
			backends = append(backends, client.ChatBackend(desc))
		}
	}

	invoker := llm.NewInvoker(backends, llm.PollConfig{
		FastInterval: cfg.PollFastInterval,
		SlowInterval: cfg.PollSlowInterval,
		FastCount:    cfg.PollFastCount,
		MaxCount:     cfg.PollMaxCount,
	})

	// The vector store is optional: the server degrades to plain completion
	// when it is unreachable.
	var docStore store.DocumentStore
	var retriever core.ContextProvider
	chroma := store.NewChromaStore(store.ChromaConfig{
		URL:        cfg.ChromaURL,
		Collection: cfg.ChromaCollection,
		Timeout:    cfg.StoreTimeout,
	}, client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := chroma.Init(ctx); err != nil {
		log.Printf("Warning: vector store unavailable, running without retrieval: %v", err)
	} else {
		docStore = chroma
		retriever = core.NewRetriever(core.NewExpander(), chroma)
	}
	cancel()

	orchestrator := core.NewOrchestrator(
		invoker,
		retriever,
		core.NewSuggestionEngine(),
		cfg.HistoryWindow,
		cfg.KPerSubquery,
		cfg.KFinal,
	)

	srv := server.New(orchestrator, cfg.Backends, docStore, cfg.AllowedOrigins)
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("[Server] listening on %s", addr)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
