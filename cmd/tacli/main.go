// Command tacli evaluates indicators from the catalog over stored or CSV
// series, verifies incremental evaluation against batch, and benchmarks
// both paths.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tacore/internal/catalog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tacli:", catalog.Describe(err))
		os.Exit(catalog.ExitCode(err))
	}
}
