// ABOUTME: Tests for the HTTP API surface
// ABOUTME: Verifies request validation, response shapes, CORS, and session IDs

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/models"
	"github.com/safetalk/safetalk/internal/store"
)

// fakeCompleter returns a canned completion outcome
type fakeCompleter struct {
	outcome *models.CompletionOutcome
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []models.Message, _ string) (*models.CompletionOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func newTestServer(completer core.Completer) *Server {
	gin.SetMode(gin.TestMode)
	orchestrator := core.NewOrchestrator(completer, nil, core.NewSuggestionEngine(), 4, 3, 5)
	backends := []models.BackendDescriptor{
		{Name: "gpt-4o-mini", MaxTokens: 800, Temperature: 0.7, Priority: 0},
		{Name: "gpt-4o", MaxTokens: 1200, Temperature: 0.7, Priority: 1},
	}
	return New(orchestrator, backends, nil, []string{"http://localhost:3000"})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestChatText_HappyPath(t *testing.T) {
	s := newTestServer(&fakeCompleter{
		outcome: &models.CompletionOutcome{Text: "You can get tested at local clinics.", BackendUsed: "gpt-4o-mini"},
	})

	w := doRequest(t, s, http.MethodPost, "/api/chat/text", map[string]any{
		"message":   "Where can I get tested?",
		"sessionId": "session_42",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Response    string   `json:"response"`
		Suggestions []string `json:"suggestions"`
		SessionID   string   `json:"session_id"`
		ModelUsed   string   `json:"model_used"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	if resp.Response != "You can get tested at local clinics." {
		t.Errorf("Unexpected response %q", resp.Response)
	}
	if resp.SessionID != "session_42" {
		t.Errorf("Session ID must round-trip, got %q", resp.SessionID)
	}
	if resp.ModelUsed != "gpt-4o-mini" {
		t.Errorf("Expected model name, got %q", resp.ModelUsed)
	}
	if len(resp.Suggestions) != 3 {
		t.Errorf("Expected 3 suggestions, got %d", len(resp.Suggestions))
	}
}

func TestChatText_MissingMessage(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodPost, "/api/chat/text", map[string]any{
		"sessionId": "session_42",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing message, got %d", w.Code)
	}
}

func TestChatText_MissingSessionID(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodPost, "/api/chat/text", map[string]any{
		"message": "hello",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing sessionId, got %d", w.Code)
	}
}

func TestChatText_InvalidJSON(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/text", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", w.Code)
	}
}

func TestChatText_BackendOutageStillOK(t *testing.T) {
	s := newTestServer(&fakeCompleter{err: errors.New("all backends down")})

	w := doRequest(t, s, http.MethodPost, "/api/chat/text", map[string]any{
		"message":   "hello",
		"sessionId": "session_42",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Fail-soft path must still return 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "I apologize") {
		t.Errorf("Expected apology response, got %s", w.Body.String())
	}
}

func TestModels_ListsFallbackChain(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodGet, "/api/chat/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		PrimaryModel    string   `json:"primary_model"`
		AvailableModels []string `json:"available_models"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	if resp.PrimaryModel != "gpt-4o-mini" {
		t.Errorf("Expected primary gpt-4o-mini, got %q", resp.PrimaryModel)
	}
	if len(resp.AvailableModels) != 2 || resp.AvailableModels[1] != "gpt-4o" {
		t.Errorf("Expected full chain in order, got %v", resp.AvailableModels)
	}
}

func TestSession_IssuesWellFormedID(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodPost, "/api/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	pattern := regexp.MustCompile(`^session_\d+_[0-9a-f]{12}$`)
	if !pattern.MatchString(resp.SessionID) {
		t.Errorf("Malformed session ID %q", resp.SessionID)
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if seen[id] {
			t.Fatalf("Duplicate session ID %q", id)
		}
		seen[id] = true
	}
}

func TestFAQSearch(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodGet, "/api/faq/search?q=prep", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Results []struct {
			Question string `json:"question"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Error("Expected FAQ matches for prep")
	}
}

func TestFAQSearch_NoMatchesReturnsEmptyArray(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodGet, "/api/faq/search?q=zzzz-nothing", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Errorf("Expected empty array, got %s", w.Body.String())
	}
}

func TestKnowledgeStatus_NoStoreConfigured(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodGet, "/api/knowledge/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Available bool `json:"available"`
		Chunks    int  `json:"chunks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	if resp.Available || resp.Chunks != 0 {
		t.Errorf("Expected unavailable with zero chunks, got %+v", resp)
	}
}

func TestKnowledgeStatus_WithStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	memStore := store.NewMemoryStore()
	if err := memStore.Upsert(context.Background(), []models.DocumentChunk{
		{ID: "chunk_1", SourceID: "doc", Text: "stored text"},
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	orchestrator := core.NewOrchestrator(
		&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}},
		nil, core.NewSuggestionEngine(), 4, 3, 5,
	)
	s := New(orchestrator, nil, memStore, nil)

	w := doRequest(t, s, http.MethodGet, "/api/knowledge/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Available bool `json:"available"`
		Chunks    int  `json:"chunks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response JSON: %v", err)
	}
	if !resp.Available || resp.Chunks != 1 {
		t.Errorf("Expected available store with 1 chunk, got %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	w := doRequest(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/text", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("Expected origin echoed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	s := newTestServer(&fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("Disallowed origin must not receive CORS headers")
	}
}
