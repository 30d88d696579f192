// ABOUTME: HTTP API exposing chat, session, FAQ, and health endpoints over gin
// ABOUTME: Thin transport layer; all pipeline behavior lives in core
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/faq"
	"github.com/safetalk/safetalk/internal/models"
	"github.com/safetalk/safetalk/internal/store"
)

// Server wires the chat pipeline into HTTP handlers
type Server struct {
	orchestrator   *core.Orchestrator
	backends       []models.BackendDescriptor
	docStore       store.DocumentStore
	allowedOrigins []string
}

// New creates a Server. docStore may be nil when no vector index is
// configured; the status endpoint reports it as unavailable.
func New(orchestrator *core.Orchestrator, backends []models.BackendDescriptor, docStore store.DocumentStore, allowedOrigins []string) *Server {
	return &Server{
		orchestrator:   orchestrator,
		backends:       backends,
		docStore:       docStore,
		allowedOrigins: allowedOrigins,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(s.corsMiddleware())

	r.GET("/health", s.handleHealth)
	r.POST("/api/session", s.handleNewSession)
	r.POST("/api/chat/text", s.handleChatText)
	r.GET("/api/chat/models", s.handleModels)
	r.GET("/api/faq/search", s.handleFAQSearch)
	r.GET("/api/knowledge/status", s.handleKnowledgeStatus)

	return r
}

// corsMiddleware allows the configured origins and answers preflight
// requests directly
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleNewSession issues a fresh session identifier
func (s *Server) handleNewSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessionId": NewSessionID()})
}

// chatRequest is the payload for POST /api/chat/text
type chatRequest struct {
	Message             string           `json:"message"`
	SessionID           string           `json:"sessionId"`
	ConversationHistory []models.Message `json:"conversationHistory"`
	PreferredModel      string           `json:"preferredModel"`
}

func (s *Server) handleChatText(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	result := s.orchestrator.Respond(c.Request.Context(), req.Message, req.SessionID, req.ConversationHistory, req.PreferredModel)
	c.JSON(http.StatusOK, result)
}

// handleModels reports the fallback chain: the primary backend and all
// configured backends in priority order
func (s *Server) handleModels(c *gin.Context) {
	names := make([]string, 0, len(s.backends))
	for _, b := range s.backends {
		names = append(names, b.Name)
	}
	primary := ""
	if len(names) > 0 {
		primary = names[0]
	}
	c.JSON(http.StatusOK, gin.H{
		"primary_model":    primary,
		"available_models": names,
	})
}

// handleKnowledgeStatus reports vector index availability and size
func (s *Server) handleKnowledgeStatus(c *gin.Context) {
	if s.docStore == nil {
		c.JSON(http.StatusOK, gin.H{"available": false, "chunks": 0})
		return
	}
	count, err := s.docStore.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"available": false, "chunks": 0, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "chunks": count})
}

func (s *Server) handleFAQSearch(c *gin.Context) {
	results := faq.Search(c.Query("q"))
	if results == nil {
		results = []faq.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// NewSessionID builds a session identifier from the current time and a
// short random suffix
func NewSessionID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}
