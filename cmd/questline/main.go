// Package main provides the entry point for the questline CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/averlon/questline/internal/cli"
	questerrors "github.com/averlon/questline/internal/errors"
)

// Build information set via ldflags.
var (
	version = "" //nolint:gochecknoglobals // Set at build time
	commit  = "" //nolint:gochecknoglobals // Set at build time
	date    = "" //nolint:gochecknoglobals // Set at build time
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}

	err := cli.Execute(ctx, info)
	cli.CloseLogFile()
	if err != nil {
		message, action := questerrors.Actionable(err)
		fmt.Fprintln(os.Stderr, "Error:", message)
		if action != "" {
			fmt.Fprintln(os.Stderr, "Hint:", action)
		}
		os.Exit(cli.ExitCodeForError(err))
	}
}
