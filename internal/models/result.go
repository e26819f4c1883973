package models

import (
	"fmt"
	"sort"
)

// DiagnosticKind identifies the category of a non-fatal condition.
type DiagnosticKind string

// Diagnostic kinds surfaced to the CLI
const (
	DiagTraversal     DiagnosticKind = "traversal_warning" // Directory unreadable or broken link
	DiagRead          DiagnosticKind = "read_warning"      // File vanished or unreadable
	DiagBinarySkipped DiagnosticKind = "binary_skipped"    // File classified as binary
	DiagSymlinkCycle  DiagnosticKind = "symlink_cycle"     // Followed link points at an ancestor
	DiagDuplicateDir  DiagnosticKind = "duplicate_dir"     // Followed link reaches an already listed directory
)

// Diagnostic is a non-fatal condition recorded during a run.
type Diagnostic struct {
	Kind    DiagnosticKind
	Path    string // Relative path the diagnostic refers to
	Message string
	Err     error
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	switch {
	case d.Err != nil && d.Message != "":
		return fmt.Sprintf("%s: %s: %s (%v)", d.Kind, d.Path, d.Message, d.Err)
	case d.Err != nil:
		return fmt.Sprintf("%s: %s: %v", d.Kind, d.Path, d.Err)
	case d.Message != "":
		return fmt.Sprintf("%s: %s: %s", d.Kind, d.Path, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Path)
	}
}

// Entry is an accepted text file ready for concatenation.
type Entry struct {
	RelPath string
	AbsPath string
	Size    int64
	Content []byte
}

// Stats counts how many paths reached each terminal state.
type Stats struct {
	Discovered int // Files emitted by the walker
	Rejected   int // Rejected by the filter rules
	Binary     int // Skipped as binary
	ReadErrors int // Skipped because they could not be read
	Written    int // Handed to the concatenator
}

// Result is the collected output of a run.
type Result struct {
	Entries     []Entry
	Diagnostics []Diagnostic
	Stats       Stats
}

// Sort orders entries by relative path and diagnostics by path then kind.
func (r *Result) Sort() {
	sort.Slice(r.Entries, func(i, j int) bool {
		return r.Entries[i].RelPath < r.Entries[j].RelPath
	})
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Kind < b.Kind
	})
}
