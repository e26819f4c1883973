package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// DisplayWritten reports the artifact that was written, with a green check
// when color output is enabled.
func DisplayWritten(w io.Writer, count int, path string, appended bool) {
	check := "✓"
	if !color.NoColor {
		check = "\x1b[32m✓\x1b[0m"
	}

	noun := "files"
	if count == 1 {
		noun = "file"
	}
	verb := "Wrote"
	if appended {
		verb = "Appended"
	}
	fmt.Fprintf(w, "%s %s %d %s to %s\n", check, verb, count, noun, path)
}
