// ABOUTME: Root command for the SafeTalk CLI
// ABOUTME: Registers subcommands and handles execution
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "safetalk",
		Short: "SafeTalk knowledge base and chat tools",
		Long: `SafeTalk is a conversational HIV care assistant.

This CLI manages its knowledge base: ingesting documents and web pages,
searching stored chunks, and reporting index status.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
