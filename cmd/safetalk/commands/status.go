// ABOUTME: CLI command to report knowledge base status
// ABOUTME: Shows collection name, chunk count, and configured backends
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show knowledge base status",
		Long:  `Report the vector store collection, how many chunks it holds, and the configured completion backends.`,
		RunE:  runStatus,
	}

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	docStore, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}

	count, err := docStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Collection: %s (%s)\n", cfg.ChromaCollection, cfg.ChromaURL)
	fmt.Fprintf(cmd.OutOrStdout(), "Chunks:     %d\n", count)
	fmt.Fprintf(cmd.OutOrStdout(), "Backends:\n")
	for i, b := range cfg.Backends {
		marker := " "
		if i == 0 {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (max_tokens=%d, temperature=%.1f)\n", marker, b.Name, b.MaxTokens, b.Temperature)
	}
	return nil
}
