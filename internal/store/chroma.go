// ABOUTME: ChromaStore is a minimal REST client to a Chroma vector index
// ABOUTME: Embeddings are computed client-side; the collection is created if missing
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/safetalk/safetalk/internal/models"
)

// ChromaConfig contains connection details for a Chroma store
type ChromaConfig struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

// ChromaStore talks to Chroma's v1 REST API. Call Init before use to
// resolve the collection ID.
type ChromaStore struct {
	url          string
	collection   string
	collectionID string
	embedder     Embedder
	client       *http.Client
}

// NewChromaStore creates a ChromaStore
func NewChromaStore(cfg ChromaConfig, embedder Embedder) *ChromaStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ChromaStore{
		url:        cfg.URL,
		collection: cfg.Collection,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init resolves (or creates) the collection and caches its ID
func (s *ChromaStore) Init(ctx context.Context) error {
	body := map[string]any{
		"name":          s.collection,
		"get_or_create": true,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections", s.url), body, &resp); err != nil {
		return fmt.Errorf("resolving collection %q: %w", s.collection, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("collection %q resolved without an id", s.collection)
	}
	s.collectionID = resp.ID
	return nil
}

// Upsert embeds and adds the chunks to the collection
func (s *ChromaStore) Upsert(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if s.collectionID == "" {
		return fmt.Errorf("store not initialized")
	}

	ids := make([]string, len(chunks))
	embeddings := make([][]float64, len(chunks))
	documents := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))

	for i, chunk := range chunks {
		vector, err := s.embedder.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", chunk.ID, err)
		}
		ids[i] = chunk.ID
		embeddings[i] = vector
		documents[i] = chunk.Text
		metadatas[i] = map[string]any{
			"source":       chunk.SourceID,
			"source_type":  string(chunk.SourceType),
			"title":        chunk.Title,
			"chunk_index":  chunk.ChunkIndex,
			"total_chunks": chunk.TotalChunks,
		}
	}

	body := map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	return s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/add", s.url, s.collectionID), body, nil)
}

// Query embeds the text and returns the k nearest chunks with distances
func (s *ChromaStore) Query(ctx context.Context, text string, k int) ([]models.RetrievalResult, error) {
	if s.collectionID == "" {
		return nil, fmt.Errorf("store not initialized")
	}
	if k <= 0 {
		k = 3
	}

	vector, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	body := map[string]any{
		"query_embeddings": [][]float64{vector},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		IDs       [][]string         `json:"ids"`
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/query", s.url, s.collectionID), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	results := make([]models.RetrievalResult, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		chunk := models.DocumentChunk{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			chunk.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta := resp.Metadatas[0][i]
			if v, ok := meta["source"].(string); ok {
				chunk.SourceID = v
			}
			if v, ok := meta["source_type"].(string); ok {
				chunk.SourceType = models.SourceType(v)
			}
			if v, ok := meta["title"].(string); ok {
				chunk.Title = v
			}
			if v, ok := meta["chunk_index"].(float64); ok {
				chunk.ChunkIndex = int(v)
			}
			if v, ok := meta["total_chunks"].(float64); ok {
				chunk.TotalChunks = int(v)
			}
		}
		var distance float64
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			distance = resp.Distances[0][i]
		}
		results = append(results, models.RetrievalResult{Chunk: chunk, Distance: distance})
	}
	return results, nil
}

// Count returns the number of chunks in the collection
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	if s.collectionID == "" {
		return 0, fmt.Errorf("store not initialized")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/collections/%s/count", s.url, s.collectionID), nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("chroma count: unexpected status %s", resp.Status)
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("decoding count: %w", err)
	}
	return count, nil
}

func (s *ChromaStore) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chroma: unexpected status %s: %s", resp.Status, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
