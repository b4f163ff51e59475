// ./main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/wardsim/cmd"
)

// main is the entry point for the wardsim experiment runner.
func main() {
	// Set up a context that listens for interrupt signals (SIGINT, SIGTERM)
	// so a long experiment can be aborted cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
