// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	subcommand := os.Args[1]
	args := os.Args[2:]
	switch subcommand {
	case "inspect":
		return runInspect(args, logger)
	case "verify":
		return runVerify(args, logger)
	case "recover":
		return runRecover(args, logger)
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: riegeli <subcommand> [flags] <file>

Subcommands:
  inspect   print chunk layout as the file is walked
  verify    verify every chunk's header and payload hash
  recover   walk the file recovering from corruption, reporting skipped bytes

Run 'riegeli <subcommand> -h' for subcommand flags.
`)
}
