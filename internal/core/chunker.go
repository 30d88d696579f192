// ABOUTME: Chunker splits raw document text into overlapping, boundary-aware segments
// ABOUTME: Prefers paragraph breaks, then sentence terminators, then hard cuts
package core

import (
	"fmt"
	"strings"
)

// Chunker produces retrieval-sized text segments with bounded overlap
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker. Overlap must stay under half the window size
// so the window always advances past a midpoint boundary cut.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap*2 >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size/2), got %d for size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into overlapping segments. Text at or under the window
// size is returned as a single chunk, unchanged. Each window is cut at the
// last paragraph break past its midpoint, else the last sentence terminator
// past its midpoint, else exactly at the window edge. Chunks that trim to
// empty are dropped.
func (c *Chunker) Chunk(text string) []string {
	if len(text) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			window := text[start:end]
			if cut := strings.LastIndex(window, "\n\n"); cut > c.size/2 {
				end = start + cut
			} else if cut := lastSentenceBreak(window); cut > c.size/2 {
				// Cut just after the terminator character
				end = start + cut + 1
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}
		start = end - c.overlap
	}

	return chunks
}

// lastSentenceBreak returns the index of the last sentence terminator
// followed by a space, or -1 if none exists
func lastSentenceBreak(window string) int {
	cut := -1
	for _, term := range []string{". ", "! ", "? "} {
		if i := strings.LastIndex(window, term); i > cut {
			cut = i
		}
	}
	return cut
}
