// ABOUTME: Tests for fan-out retrieval and deterministic result merging
// ABOUTME: Verifies dedup, capping, failure skipping, and empty handling

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/safetalk/safetalk/internal/models"
)

// fakeSearcher returns canned results per query text
type fakeSearcher struct {
	results map[string][]models.RetrievalResult
	errors  map[string]error
}

func (f *fakeSearcher) Query(_ context.Context, text string, k int) ([]models.RetrievalResult, error) {
	if err, ok := f.errors[text]; ok {
		return nil, err
	}
	results := f.results[text]
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func chunkResult(source string, index int, text string) models.RetrievalResult {
	return models.RetrievalResult{
		Chunk: models.DocumentChunk{
			ID:         fmt.Sprintf("chunk_%s_%d", source, index),
			SourceID:   source,
			ChunkIndex: index,
			Text:       text,
		},
	}
}

func TestRetrieve_SingleQuery(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]models.RetrievalResult{
			"plain query": {
				chunkResult("doc-a", 0, "first"),
				chunkResult("doc-a", 1, "second"),
			},
		},
	}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "plain query", 3, 5)
	if len(got) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got))
	}
	if got[0].Chunk.Text != "first" || got[1].Chunk.Text != "second" {
		t.Errorf("Result order not preserved: %v", got)
	}
}

func TestRetrieve_DedupFirstSeenWins(t *testing.T) {
	// "clinic" triggers the venue expansion, so the store sees the original
	// query plus three expansion phrases.
	shared := chunkResult("doc-a", 0, "from original")
	dup := chunkResult("doc-a", 0, "from expansion")
	searcher := &fakeSearcher{
		results: map[string][]models.RetrievalResult{
			"clinic":                            {shared},
			"HIV Zentrum München IZAR TUM Klinik": {dup, chunkResult("doc-b", 0, "unique")},
		},
	}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "clinic", 3, 5)
	if len(got) != 2 {
		t.Fatalf("Expected 2 results after dedup, got %d", len(got))
	}
	if got[0].Chunk.Text != "from original" {
		t.Errorf("First occurrence should win dedup, got %q", got[0].Chunk.Text)
	}
	if got[1].Chunk.SourceID != "doc-b" {
		t.Errorf("Expected the unique chunk second, got %v", got[1].Chunk)
	}
}

func TestRetrieve_SameSourceDifferentChunksKept(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]models.RetrievalResult{
			"plain query": {
				chunkResult("doc-a", 0, "zero"),
				chunkResult("doc-a", 1, "one"),
				chunkResult("doc-a", 2, "two"),
			},
		},
	}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "plain query", 5, 5)
	if len(got) != 3 {
		t.Errorf("Distinct chunk indexes from one source must all be kept, got %d", len(got))
	}
}

func TestRetrieve_CapAtKFinal(t *testing.T) {
	var many []models.RetrievalResult
	for i := 0; i < 10; i++ {
		many = append(many, chunkResult("doc-a", i, fmt.Sprintf("chunk %d", i)))
	}
	searcher := &fakeSearcher{
		results: map[string][]models.RetrievalResult{"plain query": many},
	}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "plain query", 10, 4)
	if len(got) != 4 {
		t.Fatalf("Expected cap at 4 results, got %d", len(got))
	}
	for i, res := range got {
		if res.Chunk.ChunkIndex != i {
			t.Errorf("Result %d out of order: chunk index %d", i, res.Chunk.ChunkIndex)
		}
	}
}

func TestRetrieve_FailingSubquerySkipped(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]models.RetrievalResult{
			"HIV Zentrum München IZAR TUM Klinik": {chunkResult("doc-b", 0, "survives")},
		},
		errors: map[string]error{
			"clinic": errors.New("index offline"),
		},
	}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "clinic", 3, 5)
	if len(got) != 1 {
		t.Fatalf("Failed sub-query should be skipped, not fatal: got %d results", len(got))
	}
	if got[0].Chunk.Text != "survives" {
		t.Errorf("Expected the surviving sub-query's result, got %q", got[0].Chunk.Text)
	}
}

func TestRetrieve_AllFailReturnsEmpty(t *testing.T) {
	searcher := &fakeSearcher{
		errors: map[string]error{"plain query": errors.New("index offline")},
	}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "plain query", 3, 5)
	if len(got) != 0 {
		t.Errorf("Expected empty result when every sub-query fails, got %d", len(got))
	}
}

func TestRetrieve_NoMatchesIsNotAnError(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]models.RetrievalResult{}}
	r := NewRetriever(NewExpander(), searcher)

	got := r.Retrieve(context.Background(), "plain query", 3, 5)
	if len(got) != 0 {
		t.Errorf("Expected no results, got %d", len(got))
	}
}

func TestRetrieve_Deterministic(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]models.RetrievalResult{
			"clinic": {chunkResult("doc-a", 0, "a0")},
			"HIV Zentrum München IZAR TUM Klinik": {chunkResult("doc-b", 0, "b0")},
			"Checkpoint München HIV Beratungsstelle": {chunkResult("doc-c", 0, "c0")},
			"HIV Beratung und Test München":          {chunkResult("doc-d", 0, "d0")},
		},
	}
	r := NewRetriever(NewExpander(), searcher)

	first := r.Retrieve(context.Background(), "clinic", 3, 10)
	for run := 0; run < 10; run++ {
		again := r.Retrieve(context.Background(), "clinic", 3, 10)
		if len(again) != len(first) {
			t.Fatalf("Result count changed across runs")
		}
		for i := range first {
			if again[i].Chunk.ID != first[i].Chunk.ID {
				t.Fatalf("Run %d: result %d changed to %s", run, i, again[i].Chunk.ID)
			}
		}
	}
	// Merge order follows sub-query order: original first, then expansions.
	want := []string{"a0", "b0", "c0", "d0"}
	for i, text := range want {
		if first[i].Chunk.Text != text {
			t.Errorf("Result %d = %q, want %q", i, first[i].Chunk.Text, text)
		}
	}
}
