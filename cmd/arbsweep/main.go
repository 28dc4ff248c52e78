// Package main provides the CLI entrypoint for arbsweep.
//
// arbsweep moves hardcoded UI strings into ARB catalogs:
//   - extract scans sources and writes a reviewable mapping artifact
//   - apply rewrites approved literals to catalog accessors and adds new keys
//   - restore undoes a rewrite from its backup
//   - catalog sort|check keeps the ARB files tidy
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"arbsweep/cmd/arbsweep/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
