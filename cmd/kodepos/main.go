// Package main is the entry point for the kodepos CLI.
package main

import (
	"context"
	"os"

	"github.com/kodepos-id/kodepos/cmd/kodepos/app"
)

// Version information, populated by ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
