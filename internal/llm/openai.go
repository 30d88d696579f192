// ABOUTME: OpenAI client for embeddings and direct chat-completion backends
// ABOUTME: Wraps the API with retry logic shared across backend instances
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/safetalk/safetalk/internal/models"
	"github.com/safetalk/safetalk/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured
const DefaultEmbeddingModel = openai.SmallEmbedding3

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	EmbeddingModel string
	MaxRetries     int
	RetryDelay     time.Duration
}

// Client wraps the OpenAI API client. It produces embedding vectors directly
// and acts as a factory for chat and assistant completion backends that
// share the same underlying connection.
type Client struct {
	api            *openai.Client
	embeddingModel openai.EmbeddingModel
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	embeddingModel := openai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Client{
		api:            openai.NewClient(cfg.APIKey),
		embeddingModel: embeddingModel,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// GenerateEmbedding generates an embedding vector for the text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, util.CalculateBackoff(c.retryDelay, attempt)); err != nil {
				return nil, err
			}
		}

		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}
		return embedding64, nil
	}

	return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", c.maxRetries+1, lastErr)
}

// ChatBackend returns a direct-completion backend for the descriptor
func (c *Client) ChatBackend(desc models.BackendDescriptor) *ChatBackend {
	return &ChatBackend{client: c, desc: desc}
}

// ChatBackend is a SyncBackend over the chat completions API. The descriptor
// name doubles as the upstream model identifier.
type ChatBackend struct {
	client *Client
	desc   models.BackendDescriptor
}

// Descriptor returns the backend's configuration
func (b *ChatBackend) Descriptor() models.BackendDescriptor {
	return b.desc
}

// Complete issues one chat completion bounded by the backend's token and
// temperature settings, retrying transient API errors
func (b *ChatBackend) Complete(ctx context.Context, messages []models.Message, maxTokens int, temperature float64) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	var lastErr error
	for attempt := 0; attempt <= b.client.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, util.CalculateBackoff(b.client.retryDelay, attempt)); err != nil {
				return "", err
			}
		}

		resp, err := b.client.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       b.desc.Name,
			Messages:    chatMessages,
			MaxTokens:   maxTokens,
			Temperature: float32(temperature),
		})
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("chat completion failed after %d attempts: %w", b.client.maxRetries+1, lastErr)
}

// sleepCtx waits for the duration unless the context ends first
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
