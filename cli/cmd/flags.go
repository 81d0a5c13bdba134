// Package cmd implements the usbsas CLI commands.
package cmd

import (
	"github.com/urfave/cli/v2"
)

// CommonFlags returns the flags shared by every session-spawning command.
// Flag values override config file values.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"f"},
			Usage:   "path to usbsas.yaml config file",
		},
		&cli.StringFlag{
			Name:  "worker",
			Usage: "path to the worker binary",
		},
		&cli.StringFlag{
			Name:  "worker-config",
			Usage: "path to the worker's own config file",
		},
		&cli.DurationFlag{
			Name:  "read-timeout",
			Usage: "per-response read timeout (0 blocks indefinitely)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print machine-readable JSON output",
		},
	}
}
