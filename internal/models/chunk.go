// ABOUTME: DocumentChunk represents a retrieval-ready segment of a source document
// ABOUTME: RetrievalResult pairs a chunk with its query distance
package models

import "github.com/google/uuid"

// SourceType identifies where a document chunk came from
type SourceType string

const (
	SourceTypePDF  SourceType = "pdf"
	SourceTypeURL  SourceType = "url"
	SourceTypeFile SourceType = "file"
)

// DocumentChunk is an immutable segment of a source document stored for retrieval.
// Identity is ID, generated at creation and never reused.
type DocumentChunk struct {
	ID          string     `json:"id"`
	SourceID    string     `json:"source"`
	Text        string     `json:"text"`
	ChunkIndex  int        `json:"chunk_index"`
	TotalChunks int        `json:"total_chunks"`
	SourceType  SourceType `json:"source_type"`
	Title       string     `json:"title"`
}

// RetrievalResult is a chunk matched against a query, with its vector distance.
// Produced per request and never persisted.
type RetrievalResult struct {
	Chunk    DocumentChunk `json:"chunk"`
	Distance float64       `json:"distance"`
}

// NewChunkID generates a unique document chunk identifier
func NewChunkID() string {
	return "chunk_" + uuid.New().String()
}
