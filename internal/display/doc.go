// Package display provides the user-facing terminal output of the joinai CLI.
//
// # Warning Messages
//
// Display warnings with optional components:
//
//	warning := display.Warning{
//	    Title:      "Binary files skipped",
//	    Files:      []string{"assets/logo.png"},
//	    Suggestion: "Use --exclude-extensions png",
//	}
//	warning.Display(os.Stderr)
//
// SkipWarnings turns the diagnostics of a run into one block per skip reason.
//
// # Completion
//
//	display.DisplayWritten(os.Stdout, len(entries), "concatenated.txt", false)
//
// ANSI colors follow fatih/color: they are disabled when NO_COLOR is set or
// stdout is not a terminal.
package display
