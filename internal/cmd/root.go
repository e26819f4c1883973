package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for joinai
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joinai",
		Short: "Concatenate a source tree into one annotated file for LLM context",
		Long: `joinai walks a folder, selects files by glob patterns, excluded folders,
excluded extensions, depth and hidden-file policy, skips binary content and
concatenates the remaining text files into a single annotated file.

Configuration is loaded from <input-folder>/.joinai.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewJoinCommand())
	cmd.AddCommand(NewListCommand())

	return cmd
}
