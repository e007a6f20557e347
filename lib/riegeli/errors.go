// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import "errors"

// Sentinel errors callers are expected to compare against with
// errors.Is. Every wrapped occurrence carries additional context via
// fmt.Errorf's %w, but the underlying identity is one of these.
var (
	// ErrCorrupt indicates a block header, chunk header, or chunk
	// payload failed its stored hash check, or otherwise cannot be a
	// well-formed Riegeli structure (bad magic, unrecognised chunk
	// type, inconsistent sizes). When a ChunkReader returns ErrCorrupt
	// it also records a recovery descriptor (see ChunkReader.Recovering)
	// that ChunkReader.Recover applies.
	ErrCorrupt = errors.New("riegeli: corrupt data")

	// ErrRecoverable is wrapped by the error ChunkReader.Close returns
	// when the reader is closed with a chunk in progress, or with bytes
	// left undelivered after a truncated header or payload read.
	ErrRecoverable = errors.New("riegeli: recovered from corruption")

	// ErrOverflow indicates a value does not fit the field meant to
	// hold it: num_records exceeding 56 bits, or a varint decoding to
	// more than 64 bits (ReadVarint64) or 32 bits (ReadVarint32). Chunk
	// sizes are not checked against the writer's running offset.
	ErrOverflow = errors.New("riegeli: value overflow")

	// ErrClosed indicates an operation was attempted on a ChunkWriter
	// or ChunkReader after it was closed.
	ErrClosed = errors.New("riegeli: already closed")
)
