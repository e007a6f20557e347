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

func runInspect(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect: expected exactly one file argument")
	}
	path := fs.Arg(0)

	f, err := riegeli.OpenFileReader(path)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	logger.Info("inspecting file", "path", path, "size", size)

	reader := riegeli.NewChunkReader(f)
	chunkIndex := 0
	for {
		header, err := reader.PullChunkHeader()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("inspect: chunk %d: %w", chunkIndex, err)
		}

		pos := reader.Pos()
		payload, err := reader.ReadChunk()
		if err != nil {
			return fmt.Errorf("inspect: chunk %d: %w", chunkIndex, err)
		}

		fmt.Printf("chunk %-4d offset=%-10d type=%-14s records=%-8d data_size=%-10d payload_bytes=%d\n",
			chunkIndex, pos, header.Type, header.NumRecords, header.DataSize, len(payload))

		chunkIndex++
	}

	fmt.Printf("%d chunks, %d bytes\n", chunkIndex, size)
	return nil
}
