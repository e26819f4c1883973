package classify

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/harrison/joinai/internal/fsys"
	"github.com/harrison/joinai/internal/models"
)

// Heuristic classifies content by inspecting a bounded prefix.
type Heuristic struct {
	opts Options
}

// NewHeuristic creates a heuristic classifier.
func NewHeuristic(opts Options) *Heuristic {
	return &Heuristic{opts: opts.withDefaults()}
}

// Classify reads the file once. The prefix decides binary content early;
// text files are read to the end and must be valid UTF-8 throughout.
func (h *Heuristic) Classify(filesystem fsys.FS, path string) models.Classification {
	f, err := filesystem.Open(path)
	if err != nil {
		return models.ReadError(err)
	}
	defer f.Close()

	prefix, complete, err := readPrefix(f, h.opts.PrefixSize)
	if err != nil {
		return models.ReadError(err)
	}
	if len(prefix) == 0 {
		return models.Text([]byte{})
	}

	if reason := h.inspect(prefix, complete); reason != "" {
		return models.Binary(reason)
	}
	if complete {
		return models.Text(prefix)
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return models.ReadError(fmt.Errorf("read %s: %w", path, err))
	}
	content := append(prefix, rest...)
	if !utf8.Valid(content) {
		return models.Binary("invalid UTF-8")
	}
	return models.Text(content)
}

// inspect returns a non-empty reason when the prefix looks binary.
// complete reports whether the prefix is the whole file.
func (h *Heuristic) inspect(prefix []byte, complete bool) string {
	if bytes.IndexByte(prefix, 0) >= 0 {
		return "contains NUL byte"
	}

	ratio := float64(countControl(prefix)) / float64(len(prefix))
	if ratio > *h.opts.ControlThreshold {
		return fmt.Sprintf("control bytes %.0f%% of prefix", ratio*100)
	}

	if complete {
		if !utf8.Valid(prefix) {
			return "invalid UTF-8"
		}
		return ""
	}
	if !validTruncated(prefix) {
		return "invalid UTF-8"
	}
	return ""
}

// readPrefix reads up to n bytes. complete is true when EOF was reached
// before n bytes. The buffer grows with the data, so small files stay small.
func readPrefix(r io.Reader, n int) (buf []byte, complete bool, err error) {
	var b bytes.Buffer
	read, err := b.ReadFrom(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, false, err
	}
	return b.Bytes(), read < int64(n), nil
}

// countControl counts bytes that never appear in ordinary text.
func countControl(p []byte) int {
	count := 0
	for _, b := range p {
		if isControl(b) {
			count++
		}
	}
	return count
}

func isControl(b byte) bool {
	switch b {
	case '\t', '\n', '\r', '\f', '\v':
		return false
	}
	return b < 0x20 || b == 0x7f
}

// validTruncated is utf8.Valid but tolerates a multi-byte rune cut at the end.
func validTruncated(p []byte) bool {
	if utf8.Valid(p) {
		return true
	}
	for cut := 1; cut < utf8.UTFMax && cut <= len(p); cut++ {
		tail := p[len(p)-cut:]
		if utf8.RuneStart(tail[0]) && !utf8.FullRune(tail) {
			return utf8.Valid(p[:len(p)-cut])
		}
	}
	return false
}
