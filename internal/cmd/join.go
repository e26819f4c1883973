package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/joinai/internal/classify"
	"github.com/harrison/joinai/internal/display"
	"github.com/harrison/joinai/internal/filelock"
	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/joiner"
	"github.com/harrison/joinai/internal/logger"
	"github.com/harrison/joinai/internal/output"
)

// NewJoinCommand creates the join command
func NewJoinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <input-folder>",
		Short: "Concatenate the selected text files into one output file",
		Long: `Walk <input-folder>, keep the files selected by the patterns and exclusions,
skip binary content and write every remaining file, sorted by relative path,
into a single annotated output file.

The output file is written atomically under a lock. It and its lock file are
never included in their own output.

Examples:
  joinai join . -p "*.go *.md" -e vendor
  joinai join src --exclude "*_test.go" --format markdown -o context.md
  joinai join . --max-depth 2 --hidden --with-size --footer
  joinai join . --append -o notes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runJoin,
	}

	addSelectionFlags(cmd.Flags())
	addOutputFlags(cmd.Flags())

	return cmd
}

// runJoin implements the join command logic
func runJoin(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	runID := uuid.New().String()
	log.LogDebug(fmt.Sprintf("run %s: joining %s into %s", runID, root, cfg.Output))

	classifier, err := classify.New(cfg.Classifier, cfg.ClassifyOptions())
	if err != nil {
		return err
	}

	outPath, err := filepath.Abs(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to resolve output path %s: %w", cfg.Output, err)
	}
	log.LogInfo(fmt.Sprintf("joining %s into %s", root, outPath))

	start := time.Now()
	result, err := joiner.Collect(cmd.Context(), joiner.Options{
		FS:         fsys.NewOS(),
		Traversal:  cfg.Traversal(root),
		Rules:      cfg.Rules(),
		Classifier: classifier,
		Workers:    cfg.Workers,
		SkipPaths:  []string{outPath, filelock.LockPath(outPath)},
		Logger:     log,
	})
	if err != nil {
		return err
	}

	if err := output.WriteFile(cmd.Context(), outPath, result.Entries, cfg.OutputFormat(), cfg.Append); err != nil {
		return err
	}

	log.LogSummary(result.Stats, time.Since(start))
	for _, w := range display.SkipWarnings(result.Diagnostics) {
		w.Display(cmd.ErrOrStderr())
	}
	display.DisplayWritten(cmd.OutOrStdout(), len(result.Entries), cfg.Output, cfg.Append)

	log.LogDebug(fmt.Sprintf("run %s finished", runID))
	return nil
}
