// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"encoding/binary"
	"fmt"
)

// BlockHeader is the 24-byte structure occupying every block boundary
// in the file (except offset 0 — see [hasBlockHeaderAt]). It lets a
// reader resynchronise after corruption: PreviousChunk points
// backwards to the chunk straddling (or starting at) this boundary,
// NextChunk points forward to the next chunk boundary.
type BlockHeader struct {
	// PreviousChunk is the distance from this block boundary
	// backwards to the start of the chunk occupying it. Zero iff a
	// chunk starts exactly at this boundary.
	PreviousChunk uint64

	// NextChunk is the distance from this block boundary forwards to
	// the next chunk boundary at or after it. Zero means the next
	// chunk boundary is at least BlockSize away (strictly after this
	// block's end).
	NextChunk uint64
}

// MarshalBinary serialises a BlockHeader to its 24-byte on-disk form:
// stored_header_hash || previous_chunk || next_chunk, all
// little-endian, with stored_header_hash computed as the HeaderHash
// of the trailing 16 bytes.
func (h BlockHeader) MarshalBinary() []byte {
	buf := make([]byte, BlockHeaderSize)
	binary.LittleEndian.PutUint64(buf[8:16], h.PreviousChunk)
	binary.LittleEndian.PutUint64(buf[16:24], h.NextChunk)
	binary.LittleEndian.PutUint64(buf[0:8], HeaderHash(buf[8:24]))
	return buf
}

// UnmarshalBlockHeader parses and verifies a 24-byte BlockHeader. It
// returns an error wrapping [ErrCorrupt] if buf is the wrong length or
// the stored header hash does not match.
func UnmarshalBlockHeader(buf []byte) (BlockHeader, error) {
	if len(buf) != int(BlockHeaderSize) {
		return BlockHeader{}, fmt.Errorf("riegeli: block header: want %d bytes, got %d: %w", BlockHeaderSize, len(buf), ErrCorrupt)
	}
	storedHash := binary.LittleEndian.Uint64(buf[0:8])
	computedHash := HeaderHash(buf[8:24])
	if storedHash != computedHash {
		return BlockHeader{}, fmt.Errorf("riegeli: block header hash mismatch (stored %#x, computed %#x): %w", storedHash, computedHash, ErrCorrupt)
	}
	return BlockHeader{
		PreviousChunk: binary.LittleEndian.Uint64(buf[8:16]),
		NextChunk:     binary.LittleEndian.Uint64(buf[16:24]),
	}, nil
}
