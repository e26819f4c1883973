package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/joinai/internal/models"
)

// DefaultMaxFiles caps the paths listed per warning block.
const DefaultMaxFiles = 20

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
	MaxFiles   int      // Files listed before truncating (0 = all)
}

// Display shows a formatted warning, in yellow when color output is enabled.
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	colored := !color.NoColor
	if colored {
		b.WriteString("\x1b[33m")
	}
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}

		shown := w.Files
		if w.MaxFiles > 0 && len(shown) > w.MaxFiles {
			shown = shown[:w.MaxFiles]
		}
		for i, file := range shown {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
		if hidden := len(w.Files) - len(shown); hidden > 0 {
			b.WriteString(fmt.Sprintf("      ... and %d more\n", hidden))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	if colored {
		b.WriteString("\x1b[0m")
	}

	fmt.Fprint(out, b.String())
}

// skipKinds fixes the order of the end-of-run warning blocks.
var skipKinds = []models.DiagnosticKind{
	models.DiagTraversal,
	models.DiagSymlinkCycle,
	models.DiagDuplicateDir,
	models.DiagRead,
	models.DiagBinarySkipped,
}

// WarnSkipped builds the warning for one diagnostic kind.
func WarnSkipped(kind models.DiagnosticKind, files []string) Warning {
	w := Warning{Files: files, MaxFiles: DefaultMaxFiles}
	switch kind {
	case models.DiagTraversal:
		w.Title = "Unreadable directories or broken links"
		w.Message = "These subtrees were skipped."
		w.Suggestion = "Check permissions, or add the paths to --exclude-folders"
	case models.DiagSymlinkCycle:
		w.Title = "Symlink cycles"
		w.Message = "These links point back at one of their own parent directories."
		w.Suggestion = "Exclude the looping directory or run without --follow-symlinks"
	case models.DiagDuplicateDir:
		w.Title = "Directories reached through several links"
		w.Message = "These links lead to directories whose files were already collected."
	case models.DiagRead:
		w.Title = "Unreadable files"
		w.Message = "These files vanished or could not be read during the run."
	case models.DiagBinarySkipped:
		w.Title = "Binary files skipped"
		w.Message = "These files matched the patterns but do not contain text."
		w.Suggestion = "Use --exclude-extensions to skip known binary types without reading them"
	default:
		w.Title = string(kind)
	}
	return w
}

// SkipWarnings groups diagnostics into one warning per kind, in a fixed order.
func SkipWarnings(diagnostics []models.Diagnostic) []Warning {
	grouped := make(map[models.DiagnosticKind][]string)
	for _, d := range diagnostics {
		grouped[d.Kind] = append(grouped[d.Kind], d.Path)
	}

	var warnings []Warning
	for _, kind := range skipKinds {
		if files := grouped[kind]; len(files) > 0 {
			warnings = append(warnings, WarnSkipped(kind, files))
		}
	}
	return warnings
}
