// ABOUTME: Tests for the chat pipeline orchestration
// ABOUTME: Verifies prompt assembly, history truncation, context folding, and fail-soft

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/safetalk/safetalk/internal/models"
)

// fakeCompleter records the conversation it was handed
type fakeCompleter struct {
	outcome *models.CompletionOutcome
	err     error

	gotConversation []models.Message
	gotPreferred    string
}

func (f *fakeCompleter) Complete(_ context.Context, conversation []models.Message, preferred string) (*models.CompletionOutcome, error) {
	f.gotConversation = conversation
	f.gotPreferred = preferred
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

// fakeProvider returns fixed retrieval results
type fakeProvider struct {
	results []models.RetrievalResult
}

func (f *fakeProvider) Retrieve(_ context.Context, _ string, _, _ int) []models.RetrievalResult {
	return f.results
}

func newTestOrchestrator(completer Completer, provider ContextProvider) *Orchestrator {
	return NewOrchestrator(completer, provider, NewSuggestionEngine(), 4, 3, 5)
}

func TestRespond_HappyPath(t *testing.T) {
	completer := &fakeCompleter{
		outcome: &models.CompletionOutcome{Text: "You can get tested at local clinics.", BackendUsed: "gpt-4o-mini"},
	}
	o := newTestOrchestrator(completer, nil)

	result := o.Respond(context.Background(), "Where can I get tested?", "session_1", nil, "")
	if result.Response != "You can get tested at local clinics." {
		t.Errorf("Unexpected response text %q", result.Response)
	}
	if result.SessionID != "session_1" {
		t.Errorf("Session ID must pass through, got %q", result.SessionID)
	}
	if result.ModelUsed != "gpt-4o-mini" {
		t.Errorf("Expected model name in result, got %q", result.ModelUsed)
	}
	if len(result.Suggestions) != 3 {
		t.Errorf("Expected 3 suggestions, got %d", len(result.Suggestions))
	}
}

func TestRespond_LocationSuggestions(t *testing.T) {
	completer := &fakeCompleter{
		outcome: &models.CompletionOutcome{Text: "There are several testing locations in your area.", BackendUsed: "gpt-4o-mini"},
	}
	o := newTestOrchestrator(completer, nil)

	result := o.Respond(context.Background(), "Where can I get tested?", "session_1", nil, "")
	want := []string{"What types of tests exist?", "How accurate are tests?", "What if I test positive?"}
	for i := range want {
		if result.Suggestions[i] != want[i] {
			t.Errorf("Suggestion %d = %q, want %q", i, result.Suggestions[i], want[i])
		}
	}
}

func TestRespond_SystemPromptFirst(t *testing.T) {
	completer := &fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}}
	o := newTestOrchestrator(completer, nil)

	o.Respond(context.Background(), "hello", "session_1", nil, "")
	if len(completer.gotConversation) < 2 {
		t.Fatalf("Expected system + user message, got %d messages", len(completer.gotConversation))
	}
	if completer.gotConversation[0].Role != models.RoleSystem {
		t.Errorf("First message must be the system prompt, got role %q", completer.gotConversation[0].Role)
	}
	last := completer.gotConversation[len(completer.gotConversation)-1]
	if last.Role != models.RoleUser || last.Content != "hello" {
		t.Errorf("Last message must be the user's, got %+v", last)
	}
}

func TestRespond_HistoryTruncatedToWindow(t *testing.T) {
	completer := &fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}}
	o := newTestOrchestrator(completer, nil)

	var history []models.Message
	for i := 0; i < 10; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, models.Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	o.Respond(context.Background(), "latest", "session_1", history, "")

	// System + window of 4 + new user message.
	if len(completer.gotConversation) != 6 {
		t.Fatalf("Expected 6 messages, got %d", len(completer.gotConversation))
	}
	if completer.gotConversation[1].Content != "turn 6" {
		t.Errorf("History window should start at turn 6, got %q", completer.gotConversation[1].Content)
	}
}

func TestRespond_DropsEmptyAndForeignRoles(t *testing.T) {
	completer := &fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}}
	o := newTestOrchestrator(completer, nil)

	history := []models.Message{
		{Role: models.RoleUser, Content: ""},
		{Role: "tool", Content: "tool output"},
		{Role: models.RoleAssistant, Content: "kept"},
	}
	o.Respond(context.Background(), "latest", "session_1", history, "")

	if len(completer.gotConversation) != 3 {
		t.Fatalf("Expected system + 1 kept + user, got %d", len(completer.gotConversation))
	}
	if completer.gotConversation[1].Content != "kept" {
		t.Errorf("Only the valid assistant turn should survive, got %q", completer.gotConversation[1].Content)
	}
}

func TestRespond_ContextFoldedIntoUserMessage(t *testing.T) {
	completer := &fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}}
	provider := &fakeProvider{results: []models.RetrievalResult{
		{Chunk: models.DocumentChunk{Title: "Testing Guide", Text: "Tests are free at public clinics."}},
		{Chunk: models.DocumentChunk{Text: "Results arrive within days."}},
	}}
	o := newTestOrchestrator(completer, provider)

	o.Respond(context.Background(), "Where can I get tested?", "session_1", nil, "")

	last := completer.gotConversation[len(completer.gotConversation)-1]
	if !strings.HasPrefix(last.Content, "CONTEXT:\n") {
		t.Fatalf("Expected context folding, got %q", last.Content)
	}
	if !strings.Contains(last.Content, "(Doc 1: Testing Guide) Tests are free at public clinics.") {
		t.Errorf("Titled chunk formatted wrong: %q", last.Content)
	}
	if !strings.Contains(last.Content, "(Doc 2) Results arrive within days.") {
		t.Errorf("Untitled chunk formatted wrong: %q", last.Content)
	}
	if !strings.Contains(last.Content, "\n\nQUERY: Where can I get tested?") {
		t.Errorf("Original query missing from folded message: %q", last.Content)
	}
}

func TestRespond_NoContextLeavesMessagePlain(t *testing.T) {
	completer := &fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}}
	o := newTestOrchestrator(completer, &fakeProvider{})

	o.Respond(context.Background(), "hello there", "session_1", nil, "")
	last := completer.gotConversation[len(completer.gotConversation)-1]
	if last.Content != "hello there" {
		t.Errorf("Empty retrieval must not alter the user message, got %q", last.Content)
	}
}

func TestRespond_FailSoftApology(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("all backends down")}
	o := newTestOrchestrator(completer, nil)

	result := o.Respond(context.Background(), "Where can I get tested?", "session_9", nil, "")
	if result.Response != "I apologize, but I'm having trouble connecting right now." {
		t.Errorf("Expected the apology response, got %q", result.Response)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != "Try again" {
		t.Errorf("Expected the single retry suggestion, got %v", result.Suggestions)
	}
	if result.SessionID != "session_9" {
		t.Errorf("Session ID must survive the failure path, got %q", result.SessionID)
	}
	if result.ModelUsed != "" {
		t.Errorf("No model should be reported on failure, got %q", result.ModelUsed)
	}
}

func TestRespond_TestingQueryEndToEnd(t *testing.T) {
	completer := &fakeCompleter{
		outcome: &models.CompletionOutcome{
			Text:        "There are several testing locations in Munich.",
			BackendUsed: "gpt-4o-mini",
		},
	}
	provider := &fakeProvider{results: []models.RetrievalResult{
		{Chunk: models.DocumentChunk{Title: "Testing Centers", Text: "Free HIV tests at community centers."}},
	}}
	o := newTestOrchestrator(completer, provider)

	result := o.Respond(context.Background(), "Where can I get tested?", "session_1", nil, "")

	last := completer.gotConversation[len(completer.gotConversation)-1]
	if !strings.Contains(last.Content, "Testing Centers") {
		t.Errorf("Retrieved context missing from prompt: %q", last.Content)
	}
	want := []string{"What types of tests exist?", "How accurate are tests?", "What if I test positive?"}
	for i := range want {
		if result.Suggestions[i] != want[i] {
			t.Errorf("Suggestion %d = %q, want %q", i, result.Suggestions[i], want[i])
		}
	}
}

func TestRespond_PreferredBackendForwarded(t *testing.T) {
	completer := &fakeCompleter{outcome: &models.CompletionOutcome{Text: "ok"}}
	o := newTestOrchestrator(completer, nil)

	o.Respond(context.Background(), "hello", "session_1", nil, "assistant")
	if completer.gotPreferred != "assistant" {
		t.Errorf("Preferred backend not forwarded, got %q", completer.gotPreferred)
	}
}
