// ABOUTME: MemoryStore is an in-process DocumentStore for tests and keyless development
// ABOUTME: Ranks chunks by query term overlap instead of vector distance
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/safetalk/safetalk/internal/models"
)

// MemoryStore holds chunks in memory and scores queries by term overlap
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []models.DocumentChunk
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Upsert appends the chunks
func (s *MemoryStore) Upsert(_ context.Context, chunks []models.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Query scores every chunk by how many query terms its text or title
// contains and returns the k best matches. Distance is 1/(1+score) so lower
// still means closer.
func (s *MemoryStore) Query(_ context.Context, text string, k int) ([]models.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := queryTerms(text)
	if len(terms) == 0 {
		return nil, nil
	}

	var results []models.RetrievalResult
	for _, chunk := range s.chunks {
		haystack := strings.ToLower(chunk.Text + " " + chunk.Title)
		score := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		results = append(results, models.RetrievalResult{
			Chunk:    chunk,
			Distance: 1.0 / float64(1+score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored chunks
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// queryTerms lowercases and splits the query, keeping terms long enough to
// be discriminating
func queryTerms(text string) []string {
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,!?;:\"'()")
		if len(field) >= 3 {
			terms = append(terms, field)
		}
	}
	return terms
}
