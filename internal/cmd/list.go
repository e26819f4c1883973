package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/joinai/internal/classify"
	"github.com/harrison/joinai/internal/display"
	"github.com/harrison/joinai/internal/filelock"
	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/joiner"
	"github.com/harrison/joinai/internal/logger"
	"github.com/harrison/joinai/internal/models"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <input-folder>",
		Short: "Print the files join would select, one per line",
		Long: `Walk <input-folder> with the same selection rules as join and print the
accepted relative paths without writing anything.

Examples:
  joinai list . -p "*.go"
  joinai list . --dirs --max-depth 2
  joinai list . --classify`,
		Args: cobra.ExactArgs(1),
		RunE: runList,
	}

	addSelectionFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "", "Output file to leave out of the listing (default: concatenated.txt)")
	cmd.Flags().Bool("dirs", false, "Also print traversed folders, with a trailing /")
	cmd.Flags().Bool("classify", false, "Read each file and mark binary or unreadable ones")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	showDirs, _ := cmd.Flags().GetBool("dirs")
	classifyFiles, _ := cmd.Flags().GetBool("classify")

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	var classifier classify.Classifier
	if classifyFiles {
		if classifier, err = classify.New(cfg.Classifier, cfg.ClassifyOptions()); err != nil {
			return err
		}
	}

	skip := []string{}
	if outPath, err := filepath.Abs(cfg.Output); err == nil {
		skip = append(skip, outPath, filelock.LockPath(outPath))
	}

	filesystem := fsys.NewOS()
	listing, err := joiner.List(cmd.Context(), joiner.Options{
		FS:          filesystem,
		Traversal:   cfg.Traversal(root),
		Rules:       cfg.Rules(),
		SkipPaths:   skip,
		IncludeDirs: showDirs,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rec := range listing.Records {
		switch {
		case rec.IsDir:
			fmt.Fprintf(out, "%s/\n", rec.RelPath)
		case classifier != nil:
			fmt.Fprintln(out, rec.RelPath+classMarker(classifier.Classify(filesystem, rec.AbsPath)))
		default:
			fmt.Fprintln(out, rec.RelPath)
		}
	}

	for _, d := range listing.Diagnostics {
		log.LogDiagnostic(d)
	}
	for _, w := range display.SkipWarnings(listing.Diagnostics) {
		w.Display(cmd.ErrOrStderr())
	}
	return nil
}

// classMarker annotates files that join would skip.
func classMarker(c models.Classification) string {
	switch c.Kind {
	case models.KindBinary:
		return fmt.Sprintf("  [binary: %s]", c.Reason)
	case models.KindReadError:
		return "  [unreadable]"
	default:
		return ""
	}
}
