// ABOUTME: MCP tool definitions and registration for the chat server
// ABOUTME: Defines JSON schemas for the chat, search, and status tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/store"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, orchestrator *core.Orchestrator, docStore store.DocumentStore) *Handlers {
	handlers := &Handlers{
		orchestrator: orchestrator,
		docStore:     docStore,
	}

	// 1. chat - run one conversational exchange through the pipeline
	server.AddTool(mcp.Tool{
		Name:        "chat",
		Description: "Ask the HIV care assistant a question. Retrieves knowledge base context, generates an answer, and returns follow-up suggestions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "User message to answer",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional session identifier; one is generated if omitted",
				},
				"preferred_model": map[string]interface{}{
					"type":        "string",
					"description": "Optional backend name to try first",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.Chat)

	// 2. search_knowledge - query the knowledge base directly
	server.AddTool(mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the knowledge base for document chunks relevant to a query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchKnowledge)

	// 3. knowledge_status - report knowledge base availability and size
	server.AddTool(mcp.Tool{
		Name:        "knowledge_status",
		Description: "Report whether the knowledge base is reachable and how many chunks it holds.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.KnowledgeStatus)

	return handlers
}
