// ABOUTME: AssistantBackend runs completions through the OpenAI Assistants API
// ABOUTME: Starts a thread-and-run, exposes poll state, and deletes the thread on release
package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/safetalk/safetalk/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// AssistantBackend is an AsyncBackend over a pre-configured assistant. Each
// attempt creates a server-side thread; ReleaseRun deletes it so attempts
// never leak threads.
type AssistantBackend struct {
	client      *Client
	assistantID string
	desc        models.BackendDescriptor
}

// AssistantBackend returns an asynchronous-run backend for the assistant ID
func (c *Client) AssistantBackend(assistantID string, desc models.BackendDescriptor) *AssistantBackend {
	return &AssistantBackend{client: c, assistantID: assistantID, desc: desc}
}

// Descriptor returns the backend's configuration
func (b *AssistantBackend) Descriptor() models.BackendDescriptor {
	return b.desc
}

// StartRun creates a thread seeded with the conversation and starts a run on
// it in a single API call
func (b *AssistantBackend) StartRun(ctx context.Context, messages []models.Message) (RunHandle, error) {
	threadMessages := make([]openai.ThreadMessage, 0, len(messages))
	for _, msg := range messages {
		// Threads only carry user and assistant roles, so the system
		// framing is sent as a user message. The assistant's own
		// instructions already set the persona.
		role := openai.ThreadMessageRoleUser
		if msg.Role == models.RoleAssistant {
			role = openai.ThreadMessageRoleAssistant
		}
		threadMessages = append(threadMessages, openai.ThreadMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	run, err := b.client.api.CreateThreadAndRun(ctx, openai.CreateThreadAndRunRequest{
		RunRequest: openai.RunRequest{AssistantID: b.assistantID},
		Thread:     openai.ThreadRequest{Messages: threadMessages},
	})
	if err != nil {
		return "", fmt.Errorf("creating thread and run: %w", err)
	}

	return RunHandle(run.ThreadID + "/" + run.ID), nil
}

// PollRun fetches the run's current state. When the run has completed, the
// newest assistant message on the thread is returned as the result text.
func (b *AssistantBackend) PollRun(ctx context.Context, handle RunHandle) (RunState, error) {
	threadID, runID, err := splitHandle(handle)
	if err != nil {
		return RunState{}, err
	}

	run, err := b.client.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return RunState{}, fmt.Errorf("retrieving run: %w", err)
	}

	state := RunState{Status: RunStatus(run.Status)}
	if state.Status != StatusCompleted {
		return state, nil
	}

	text, err := b.fetchResult(ctx, threadID)
	if err != nil {
		return RunState{}, err
	}
	state.Text = text
	return state, nil
}

// ReleaseRun deletes the run's thread. Best-effort: deletion errors are
// logged and swallowed.
func (b *AssistantBackend) ReleaseRun(handle RunHandle) {
	threadID, _, err := splitHandle(handle)
	if err != nil {
		return
	}
	if _, err := b.client.api.DeleteThread(context.Background(), threadID); err != nil {
		log.Printf("[Assistant] failed to delete thread %s: %v", threadID, err)
	}
}

// fetchResult reads the newest assistant message from the thread
func (b *AssistantBackend) fetchResult(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	msgs, err := b.client.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("listing thread messages: %w", err)
	}

	var sb strings.Builder
	for _, msg := range msgs.Messages {
		if msg.Role != string(openai.ThreadMessageRoleAssistant) {
			continue
		}
		for _, part := range msg.Content {
			if part.Text != nil {
				sb.WriteString(part.Text.Value)
			}
		}
	}
	return sb.String(), nil
}

func splitHandle(handle RunHandle) (threadID, runID string, err error) {
	parts := strings.SplitN(string(handle), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed run handle %q", handle)
	}
	return parts[0], parts[1], nil
}
