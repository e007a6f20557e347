// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/riegeli-go/riegeli/lib/riegeli"
)

func runRecover(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("recover: expected exactly one file argument")
	}
	path := fs.Arg(0)

	f, err := riegeli.OpenFileReader(path)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	defer f.Close()

	reader := riegeli.NewChunkReader(f)
	var skippedBytes int64
	var recoveredChunks, goodChunks int

	for {
		_, err := reader.PullChunkHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if kind, ok := reader.Recovering(); ok {
				logger.Warn("recovering from corrupt chunk header", "offset", reader.Pos(), "kind", kind, "error", err)
				if recErr := reader.Recover(&skippedBytes); recErr != nil {
					return fmt.Errorf("recover: unable to resynchronise: %w", recErr)
				}
				recoveredChunks++
				continue
			}
			return fmt.Errorf("recover: %w", err)
		}

		if _, err := reader.ReadChunk(); err != nil {
			if kind, ok := reader.Recovering(); ok {
				logger.Warn("recovering from corrupt chunk payload", "offset", reader.Pos(), "kind", kind, "error", err)
				if recErr := reader.Recover(&skippedBytes); recErr != nil {
					return fmt.Errorf("recover: unable to resynchronise: %w", recErr)
				}
				recoveredChunks++
				continue
			}
			return fmt.Errorf("recover: %w", err)
		}
		goodChunks++
	}

	logger.Info("recovery complete",
		"path", path,
		"good_chunks", goodChunks,
		"recovered_chunks", recoveredChunks,
		"skipped_bytes", skippedBytes,
	)
	fmt.Printf("%d good chunks, %d recovered, %d bytes skipped\n", goodChunks, recoveredChunks, skippedBytes)
	return nil
}
