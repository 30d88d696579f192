// ABOUTME: Ingestion pipeline turning files and web pages into stored document chunks
// ABOUTME: Cleans markdown boilerplate, drops short content, chunks, and upserts
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/safetalk/safetalk/internal/models"
	"github.com/safetalk/safetalk/internal/store"
)

// minContentLength is the threshold below which a source is considered
// boilerplate-only and skipped
const minContentLength = 200

var (
	leadingLinkPattern = regexp.MustCompile(`(?m)^\[[^\]]*\]\([^)]*\)\s*`)
	imagePattern       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	excessNewlines     = regexp.MustCompile(`\n{3,}`)
)

// navPhrases are navigation fragments that survive HTML conversion
var navPhrases = []string{
	"Direkt zum Inhalt",
	"Zum Inhalt springen",
	"Skip to content",
	"Main navigation",
	"Hauptnavigation",
}

// Chunker splits cleaned text into overlapping chunks
type Chunker interface {
	Chunk(text string) []string
}

// Pipeline ingests documents into a DocumentStore
type Pipeline struct {
	store   store.DocumentStore
	chunker Chunker
	client  *http.Client
}

// NewPipeline creates an ingestion Pipeline
func NewPipeline(docStore store.DocumentStore, chunker Chunker) *Pipeline {
	return &Pipeline{
		store:   docStore,
		chunker: chunker,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IngestFile reads a local text or markdown file and stores its chunks.
// Returns the number of chunks stored.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p.ingest(ctx, string(data), path, title, models.SourceTypeFile)
}

// IngestURL fetches a web page, converts it to markdown, and stores its
// chunks. Returns the number of chunks stored.
func (p *Pipeline) IngestURL(ctx context.Context, pageURL string) (int, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return 0, fmt.Errorf("invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching %s: unexpected status %s", pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", pageURL, err)
	}

	converter := md.NewConverter(parsed.Host, true, nil)
	markdown, err := converter.ConvertString(string(body))
	if err != nil {
		return 0, fmt.Errorf("converting %s: %w", pageURL, err)
	}

	title := pageTitle(string(body), pageURL)
	return p.ingest(ctx, markdown, pageURL, title, models.SourceTypeURL)
}

// ingest cleans, chunks, and upserts one document's content
func (p *Pipeline) ingest(ctx context.Context, content, sourceID, title string, sourceType models.SourceType) (int, error) {
	content = CleanMarkdown(content)
	if len(content) < minContentLength {
		log.Printf("[Ingest] skipping %s: only %d chars after cleanup", sourceID, len(content))
		return 0, nil
	}

	pieces := p.chunker.Chunk(content)
	chunks := make([]models.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.DocumentChunk{
			ID:          models.NewChunkID(),
			SourceID:    sourceID,
			Text:        piece,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
			SourceType:  sourceType,
			Title:       title,
		})
	}

	if err := p.store.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("storing chunks for %s: %w", sourceID, err)
	}
	log.Printf("[Ingest] stored %d chunks from %s", len(chunks), sourceID)
	return len(chunks), nil
}

// CleanMarkdown strips navigation links, images, nav phrases, and excess
// blank lines left over from HTML conversion
func CleanMarkdown(content string) string {
	content = leadingLinkPattern.ReplaceAllString(content, "")
	content = imagePattern.ReplaceAllString(content, "")
	for _, phrase := range navPhrases {
		content = strings.ReplaceAll(content, phrase, "")
	}
	content = excessNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// pageTitle extracts the HTML title, falling back to the URL
func pageTitle(html, pageURL string) string {
	if m := titlePattern.FindStringSubmatch(html); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title
		}
	}
	return pageURL
}
