// ABOUTME: MCP tool handler implementations for the chat server
// ABOUTME: Each handler validates arguments and returns JSON tool results
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/store"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	orchestrator *core.Orchestrator
	docStore     store.DocumentStore // nil means no index configured
}

// Chat handles the chat tool
func (h *Handlers) Chat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	}
	preferred := request.GetString("preferred_model", "")

	result := h.orchestrator.Respond(ctx, message, sessionID, nil, preferred)

	payload, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// SearchKnowledge handles the search_knowledge tool
func (h *Handlers) SearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxResults := request.GetInt("max_results", 5)

	if h.docStore == nil {
		return mcp.NewToolResultError("no knowledge base is configured"), nil
	}

	results, err := h.docStore.Query(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("knowledge base query failed: %v", err)), nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// KnowledgeStatus handles the knowledge_status tool
func (h *Handlers) KnowledgeStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := map[string]interface{}{
		"available": false,
		"chunks":    0,
	}

	if h.docStore != nil {
		count, err := h.docStore.Count(ctx)
		if err == nil {
			status["available"] = true
			status["chunks"] = count
		} else {
			status["error"] = err.Error()
		}
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
