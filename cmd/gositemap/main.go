// Package main provides the entry point for the gositemap CLI.
//
// Usage:
//
//	gositemap crawl https://example.com --max-depth 2 --format json
//	gositemap export urls.txt --format xml
//
// See --help for all available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BenjaminSRussell/gositemap/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
