// ABOUTME: CLI command to search the knowledge base
// ABOUTME: Runs the query expansion and merge pipeline and prints ranked chunks
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safetalk/safetalk/internal/core"
)

var searchLimit int

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long: `Search stored document chunks. The query goes through the same
expansion and merge pipeline the chat server uses.

Examples:
  safetalk search "hiv test münchen"
  safetalk search --limit 10 "prep side effects"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	docStore, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}

	retriever := core.NewRetriever(core.NewExpander(), docStore)
	results := retriever.Retrieve(ctx, args[0], cfg.KPerSubquery, searchLimit)
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No results found")
		return nil
	}

	for i, res := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (distance %.4f)\n", i+1, res.Chunk.Title, res.Distance)
		fmt.Fprintf(cmd.OutOrStdout(), "   source: %s [chunk %d/%d]\n", res.Chunk.SourceID, res.Chunk.ChunkIndex+1, res.Chunk.TotalChunks)
		fmt.Fprintf(cmd.OutOrStdout(), "   %s\n\n", truncate(res.Chunk.Text, 200))
	}
	return nil
}
