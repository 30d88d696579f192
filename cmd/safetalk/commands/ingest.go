// ABOUTME: CLI command to ingest documents into the knowledge base
// ABOUTME: Handles local files and URLs, reporting chunks stored per source
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safetalk/safetalk/internal/core"
	"github.com/safetalk/safetalk/internal/ingest"
)

var ingestURLs []string

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest documents into the knowledge base",
		Long: `Ingest local files or web pages into the knowledge base.

Examples:
  safetalk ingest notes.md guide.txt
  safetalk ingest --url https://example.org/hiv-testing
  safetalk ingest docs/*.md --url https://example.org/faq`,
		RunE: runIngest,
	}

	cmd.Flags().StringSliceVar(&ingestURLs, "url", []string{}, "Web pages to ingest (repeatable)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(ingestURLs) == 0 {
		return fmt.Errorf("nothing to ingest: pass file paths or --url")
	}

	ctx := cmd.Context()
	docStore, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}

	chunker, err := core.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("creating chunker: %w", err)
	}
	pipeline := ingest.NewPipeline(docStore, chunker)

	total := 0
	var failures []string

	for _, path := range args {
		n, err := pipeline.IngestFile(ctx, path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", path, n)
		total += n
	}
	for _, pageURL := range ingestURLs {
		n, err := pipeline.IngestURL(ctx, pageURL)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", pageURL, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", pageURL, n)
		total += n
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nStored %d chunks total\n", total)
	if len(failures) > 0 {
		return fmt.Errorf("some sources failed:\n  %s", strings.Join(failures, "\n  "))
	}
	return nil
}
