// Package output renders collected entries into the concatenated artifact.
package output

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/harrison/joinai/internal/filelock"
	"github.com/harrison/joinai/internal/models"
)

// Style names accepted by ParseStyle
const (
	StylePlain    = "plain"
	StyleMarkdown = "markdown"
)

// DefaultPath is the artifact written when no output path is given.
const DefaultPath = "concatenated.txt"

// Format controls the layout of each entry.
type Format struct {
	Style    string // plain or markdown
	WithSize bool   // Append the byte count to each header
	Footer   bool   // Plain only: close every entry with an END FILE line
}

// ParseStyle validates a style name. Empty selects plain.
func ParseStyle(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", StylePlain:
		return StylePlain, nil
	case StyleMarkdown, "md":
		return StyleMarkdown, nil
	default:
		return "", models.NewConfigError("format", s, models.ErrInvalidOption)
	}
}

// Render writes every entry in order. bufio errors are sticky, so the
// first write failure is reported by the final flush.
func Render(w io.Writer, entries []models.Entry, format Format) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		switch format.Style {
		case StyleMarkdown:
			writeMarkdown(bw, e, format)
		default:
			writePlain(bw, e, format)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writePlain(w *bufio.Writer, e models.Entry, format Format) {
	fmt.Fprintf(w, "// FILE: %s", e.RelPath)
	if format.WithSize {
		fmt.Fprintf(w, " (%d bytes)", e.Size)
	}
	w.WriteByte('\n')
	w.Write(e.Content)
	w.WriteByte('\n')
	if format.Footer {
		fmt.Fprintf(w, "// END FILE: %s\n", e.RelPath)
	}
}

func writeMarkdown(w *bufio.Writer, e models.Entry, format Format) {
	fmt.Fprintf(w, "## %s", e.RelPath)
	if format.WithSize {
		fmt.Fprintf(w, " (%d bytes)", e.Size)
	}
	w.WriteString("\n\n")

	fence := strings.Repeat("`", fenceLength(e.Content))
	fmt.Fprintf(w, "%s%s\n", fence, Language(e.RelPath))
	w.Write(e.Content)
	if len(e.Content) > 0 && e.Content[len(e.Content)-1] != '\n' {
		w.WriteByte('\n')
	}
	fmt.Fprintf(w, "%s\n\n", fence)
}

// fenceLength is one more than the longest backtick run, and at least 3.
func fenceLength(content []byte) int {
	longest, run := 0, 0
	for _, b := range content {
		if b == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest+1 < 3 {
		return 3
	}
	return longest + 1
}

var languages = map[string]string{
	"c":     "c",
	"cc":    "cpp",
	"cpp":   "cpp",
	"cs":    "csharp",
	"css":   "css",
	"go":    "go",
	"h":     "c",
	"hpp":   "cpp",
	"html":  "html",
	"java":  "java",
	"js":    "javascript",
	"json":  "json",
	"jsx":   "jsx",
	"kt":    "kotlin",
	"lua":   "lua",
	"md":    "markdown",
	"php":   "php",
	"py":    "python",
	"rb":    "ruby",
	"rs":    "rust",
	"scala": "scala",
	"sh":    "bash",
	"sql":   "sql",
	"swift": "swift",
	"toml":  "toml",
	"ts":    "typescript",
	"tsx":   "tsx",
	"xml":   "xml",
	"yaml":  "yaml",
	"yml":   "yaml",
	"zig":   "zig",
}

// Language returns the fenced code block tag for a path, or "" if unknown.
func Language(relPath string) string {
	name := path.Base(relPath)
	switch name {
	case "Dockerfile":
		return "dockerfile"
	case "Makefile":
		return "makefile"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	return languages[ext]
}

// WriteFile renders entries and writes them to path atomically under a lock.
// With appendMode the rendered entries follow the existing file content.
func WriteFile(ctx context.Context, path string, entries []models.Entry, format Format, appendMode bool) error {
	var buf bytes.Buffer
	if err := Render(&buf, entries, format); err != nil {
		return err
	}

	return filelock.LockAndUpdate(ctx, path, func(existing []byte) ([]byte, error) {
		if !appendMode || len(existing) == 0 {
			return buf.Bytes(), nil
		}
		return append(existing, buf.Bytes()...), nil
	})
}
