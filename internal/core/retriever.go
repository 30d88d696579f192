// ABOUTME: Retriever fans a query out across expanded sub-queries and merges results
// ABOUTME: Deduplicates on (source, chunk index), first occurrence wins
package core

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/safetalk/safetalk/internal/models"
)

// DocumentSearcher is the retrieval capability the Retriever needs from a
// document store
type DocumentSearcher interface {
	Query(ctx context.Context, text string, k int) ([]models.RetrievalResult, error)
}

// Retriever issues expanded sub-queries against the document store and
// merges their results into one capped, deduplicated list
type Retriever struct {
	expander *Expander
	store    DocumentSearcher
}

// NewRetriever creates a Retriever
func NewRetriever(expander *Expander, store DocumentSearcher) *Retriever {
	return &Retriever{expander: expander, store: store}
}

// Retrieve expands the query and runs every sub-query concurrently, then
// merges results in sub-query order. Duplicate (source, chunk index) pairs
// keep their first occurrence; the merged list is capped at kFinal.
//
// Ordering is by sub-query first-seen position. Distances are not
// comparable across sub-queries, so no cross-query re-ranking happens
// (see DESIGN.md).
//
// A failing sub-query is logged and skipped. An empty return signals "no
// context", never an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, kPerSubquery, kFinal int) []models.RetrievalResult {
	subqueries := r.expander.Expand(query)

	// Write-once indexed slots keep the merge deterministic under fan-out.
	slots := make([][]models.RetrievalResult, len(subqueries))
	var wg sync.WaitGroup
	for i, sq := range subqueries {
		wg.Add(1)
		go func(i int, sq string) {
			defer wg.Done()
			results, err := r.store.Query(ctx, sq, kPerSubquery)
			if err != nil {
				log.Printf("[Retriever] sub-query %q failed: %v", sq, err)
				return
			}
			slots[i] = results
		}(i, sq)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []models.RetrievalResult
	for _, results := range slots {
		for _, res := range results {
			key := fmt.Sprintf("%s#%d", res.Chunk.SourceID, res.Chunk.ChunkIndex)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, res)
			if len(merged) == kFinal {
				return merged
			}
		}
	}
	return merged
}
