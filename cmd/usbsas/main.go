// Package main provides the usbsas CLI entrypoint.
//
// Every command except `version` spawns a sandboxed worker process and
// drives it over the pipe protocol.
//
// Usage:
//
//	usbsas <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: worker-reported error
//   - 2: protocol or transport failure
//   - 3: usage error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cea-sec/usbsas/cli/cmd"
	"github.com/cea-sec/usbsas/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "usbsas",
		Usage:          "Drive a sandboxed usbsas worker over its pipe protocol",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.DevicesCommand(),
			cmd.TransferCommand(),
			cmd.WipeCommand(),
			cmd.ImgDiskCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from
// cli.Exit() so callers can tell worker errors from protocol failures.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N", so skip those
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
