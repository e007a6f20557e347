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

func runVerify(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("verify: expected exactly one file argument")
	}
	path := fs.Arg(0)

	f, err := riegeli.OpenFileReader(path)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	defer f.Close()

	reader := riegeli.NewChunkReader(f)
	if err := reader.CheckFileFormat(); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if _, err := reader.ReadChunk(); err != nil {
		return fmt.Errorf("verify: reading file signature chunk: %w", err)
	}

	chunkIndex := 1
	for {
		_, err := reader.PullChunkHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			logger.Error("chunk header verification failed", "chunk", chunkIndex, "offset", reader.Pos(), "error", err)
			return fmt.Errorf("verify: corrupt file at chunk %d", chunkIndex)
		}
		if _, err := reader.ReadChunk(); err != nil {
			logger.Error("chunk payload verification failed", "chunk", chunkIndex, "offset", reader.Pos(), "error", err)
			return fmt.Errorf("verify: corrupt file at chunk %d", chunkIndex)
		}
		chunkIndex++
	}

	logger.Info("file verified", "path", path, "chunks", chunkIndex)
	return nil
}
