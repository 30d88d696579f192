// ABOUTME: Main entry point for the MCP server with stdio transport
// ABOUTME: Exposes the chat pipeline and knowledge base as MCP tools
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/safetalk/safetalk/internal/config"
	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/llm"
	"github.com/safetalk/safetalk/internal/mcp"
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

	server := mcpserver.NewMCPServer(
		"SafeTalk Assistant",
		"0.1.0",
	)
	mcp.RegisterTools(server, orchestrator, docStore)

	log.Println("SafeTalk MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
