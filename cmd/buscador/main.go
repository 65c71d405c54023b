// Command buscador searches vehicle plates across RRV spreadsheets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// populated at build time with -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
