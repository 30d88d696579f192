// ABOUTME: DocumentStore capability interface over an external vector index
// ABOUTME: Consumed by retrieval and ingestion; implementations are Chroma and in-memory
package store

import (
	"context"

	"github.com/safetalk/safetalk/internal/models"
)

// DocumentStore is the narrow interface the pipeline needs from a vector
// index. Chunks are immutable once stored; concurrency control is delegated
// to the backing system.
type DocumentStore interface {
	Upsert(ctx context.Context, chunks []models.DocumentChunk) error
	Query(ctx context.Context, text string, k int) ([]models.RetrievalResult, error)
	Count(ctx context.Context) (int, error)
}

// Embedder turns text into an embedding vector for index operations
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}
