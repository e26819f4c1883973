package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/harrison/joinai/internal/cmd"
)

// Version is the current version of the joinai application
const Version = "1.0.0"

func main() {
	if cmd.Version == "dev" {
		cmd.Version = Version
	}
	rootCmd := cmd.NewRootCommand()

	// An interrupted run leaves no partial artifact: the output is renamed into place.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
