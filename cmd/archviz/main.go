package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/archviz/internal/ui"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		ui.Bad.Fprintf(os.Stderr, "archviz: %v\n", err)
		stop()
		os.Exit(1)
	}
}
