// ABOUTME: Orchestrator composes retrieval context, completion, and suggestions into one response
// ABOUTME: Fails soft: backend outages produce an apology response, never an error to the caller
package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/safetalk/safetalk/internal/models"
)

// systemPrompt frames every conversation sent to a completion backend
const systemPrompt = `You are a supportive HIV care assistant. You answer questions about HIV prevention, testing, diagnosis, and treatment using the provided context when it is available.
Keep answers practical, concise, and free of unnecessary complexity. Maintain a warm, non-judgmental tone suitable for sensitive health topics.
If the provided context does not cover the question, say so plainly rather than guessing. Respond in the user's language.`

// apologyText is returned when every completion backend has failed
const apologyText = "I apologize, but I'm having trouble connecting right now."

// apologySuggestions is the minimal suggestion set for the fail-soft response
var apologySuggestions = []string{"Try again"}

// Completer is the completion capability the Orchestrator needs
type Completer interface {
	Complete(ctx context.Context, conversation []models.Message, preferred string) (*models.CompletionOutcome, error)
}

// ContextProvider supplies retrieval context for a query. A nil provider
// configures the pipeline variant without retrieval.
type ContextProvider interface {
	Retrieve(ctx context.Context, query string, kPerSubquery, kFinal int) []models.RetrievalResult
}

// ChatResult is the caller-facing outcome of one chat exchange
type ChatResult struct {
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
	SessionID   string   `json:"session_id"`
	ModelUsed   string   `json:"model_used,omitempty"`
}

// Orchestrator runs the retrieval-and-completion pipeline for chat requests
type Orchestrator struct {
	completer     Completer
	retriever     ContextProvider
	suggester     *SuggestionEngine
	historyWindow int
	kPerSubquery  int
	kFinal        int
}

// NewOrchestrator creates an Orchestrator. retriever may be nil to disable
// retrieval augmentation.
func NewOrchestrator(completer Completer, retriever ContextProvider, suggester *SuggestionEngine, historyWindow, kPerSubquery, kFinal int) *Orchestrator {
	return &Orchestrator{
		completer:     completer,
		retriever:     retriever,
		suggester:     suggester,
		historyWindow: historyWindow,
		kPerSubquery:  kPerSubquery,
		kFinal:        kFinal,
	}
}

// Respond processes one user message. It truncates history to the recent
// window, folds retrieved context into the prompt when present, invokes the
// completion fallback chain, and derives follow-up suggestions. Backend
// exhaustion is converted into a fixed apology response: the conversation
// never dead-ends on an outage.
func (o *Orchestrator) Respond(ctx context.Context, message, sessionID string, history []models.Message, preferredBackend string) ChatResult {
	conversation := make([]models.Message, 0, o.historyWindow+2)
	conversation = append(conversation, models.Message{Role: models.RoleSystem, Content: systemPrompt})

	for _, msg := range models.LastN(history, o.historyWindow) {
		if msg.Content == "" {
			continue
		}
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			continue
		}
		conversation = append(conversation, msg)
	}

	userContent := message
	if o.retriever != nil {
		if docContext := o.retrieveContext(ctx, message); docContext != "" {
			userContent = fmt.Sprintf("CONTEXT:\n%s\n\nQUERY: %s", docContext, message)
		}
	}
	conversation = append(conversation, models.Message{Role: models.RoleUser, Content: userContent})

	outcome, err := o.completer.Complete(ctx, conversation, preferredBackend)
	if err != nil {
		log.Printf("[Orchestrator] completion exhausted for session %s: %v", sessionID, err)
		return ChatResult{
			Response:    apologyText,
			Suggestions: apologySuggestions,
			SessionID:   sessionID,
		}
	}

	return ChatResult{
		Response:    outcome.Text,
		Suggestions: o.suggester.Suggest(message, outcome.Text),
		SessionID:   sessionID,
		ModelUsed:   outcome.BackendUsed,
	}
}

// retrieveContext gathers document context for the message. An empty string
// means "no context" and is not an error.
func (o *Orchestrator) retrieveContext(ctx context.Context, message string) string {
	results := o.retriever.Retrieve(ctx, message, o.kPerSubquery, o.kFinal)
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if res.Chunk.Title != "" {
			fmt.Fprintf(&sb, "(Doc %d: %s) %s", i+1, res.Chunk.Title, res.Chunk.Text)
		} else {
			fmt.Fprintf(&sb, "(Doc %d) %s", i+1, res.Chunk.Text)
		}
	}
	return sb.String()
}
