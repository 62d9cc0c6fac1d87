// Package main provides the entry point for the taskledger CLI.
package main

import (
	"context"
	"os"

	"github.com/taskledger/taskledger/internal/cli"
	"github.com/taskledger/taskledger/internal/signal"
)

// Build information set via ldflags.
//
//nolint:gochecknoglobals // populated by the linker at build time
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	os.Exit(run())
}

// run keeps deferred cleanup out of main, where os.Exit would skip it.
func run() int {
	handler := signal.NewHandler(context.Background())
	defer handler.Stop()
	defer cli.CloseLogFile()

	err := cli.Execute(handler.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	return cli.ExitCodeForError(err)
}
