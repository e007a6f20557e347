// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import "fmt"

// defaultBufferedChunks is the default value of ChunkWriterOptions's
// BufferedChunks: how many chunks a writer accumulates before it must
// know the next chunk's start in order to flush the oldest one.
const defaultBufferedChunks = 64

// ChunkWriterOptions configures a ChunkWriter.
type ChunkWriterOptions struct {
	// BufferedChunks is how many chunks the writer holds in memory
	// before flushing the oldest. Zero selects defaultBufferedChunks.
	// A block header's next_chunk field cannot be computed until the
	// following chunk's start is known, so at least one chunk is
	// always held back until Flush or Close.
	BufferedChunks int
}

type pendingChunk struct {
	start int64
	raw   []byte
}

// ChunkWriter writes a stream of chunks to a Sink, striping each
// chunk's header-plus-payload bytes across fixed-size physical
// blocks and emitting a BlockHeader at every block boundary crossed.
// It buffers recently appended chunks because a block header's
// next_chunk pointer requires knowing where the chunk after it
// begins.
type ChunkWriter struct {
	sink           Sink
	bufferedChunks int
	pending        []pendingChunk
	filePos        int64
	closed         bool
}

// NewChunkWriter creates a ChunkWriter over sink, positioned at the
// start of the file, and immediately appends the FileSignature chunk
// every Riegeli file must begin with.
func NewChunkWriter(sink Sink, opts ChunkWriterOptions) (*ChunkWriter, error) {
	bufferedChunks := opts.BufferedChunks
	if bufferedChunks <= 0 {
		bufferedChunks = defaultBufferedChunks
	}
	w := &ChunkWriter{sink: sink, bufferedChunks: bufferedChunks}
	if err := w.Append(ChunkHeader{Type: ChunkTypeFileSignature}, nil); err != nil {
		return nil, fmt.Errorf("riegeli: chunk writer: writing file signature: %w", err)
	}
	return w, nil
}

// Append writes one chunk. h.DataSize and h.DataHash are filled in
// from payload regardless of what the caller set, since they must
// agree with the bytes actually being written.
func (w *ChunkWriter) Append(h ChunkHeader, payload []byte) error {
	if w.closed {
		return ErrClosed
	}

	h.DataSize = uint64(len(payload))
	h.DataHash = Hash(payload)

	headerBytes, err := h.MarshalBinary()
	if err != nil {
		return fmt.Errorf("riegeli: chunk writer: %w", err)
	}

	raw := make([]byte, 0, len(headerBytes)+len(payload))
	raw = append(raw, headerBytes...)
	raw = append(raw, payload...)

	start := w.filePos
	w.pending = append(w.pending, pendingChunk{start: start, raw: raw})
	w.filePos = ChunkEnd(start, int64(len(raw)))

	if len(w.pending) > w.bufferedChunks {
		return w.drainExceptLast()
	}
	return nil
}

// PadToBlockBoundary appends a zero-filled Padding chunk that brings
// the writer's position to the next block boundary, so a following
// real chunk never straddles one. It is a no-op if the writer is
// already at a boundary. If the gap to the next boundary is not large
// enough to hold a bare 40-byte ChunkHeader, the padding chunk's own
// header straddles the boundary instead — still cheaper than letting
// an arbitrarily large real chunk do so.
func (w *ChunkWriter) PadToBlockBoundary() error {
	if w.closed {
		return ErrClosed
	}
	if IsBlockBoundary(w.filePos) {
		return nil
	}
	nextBoundary := (w.filePos/BlockSize + 1) * BlockSize
	gap := nextBoundary - w.filePos
	payloadLen := gap - ChunkHeaderSize
	if payloadLen < 0 {
		payloadLen = 0
	}
	return w.Append(ChunkHeader{Type: ChunkTypePadding}, make([]byte, payloadLen))
}

// Flush writes every buffered chunk to the sink. The most recently
// appended chunk's trailing block headers (if any) are finalised with
// next_chunk = 0, since no later chunk is yet known.
func (w *ChunkWriter) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if err := w.drainAll(); err != nil {
		return err
	}
	return w.sink.Flush()
}

// Close flushes any buffered chunks and closes the underlying sink.
// Calling Close more than once is a no-op.
func (w *ChunkWriter) Close() error {
	if w.closed {
		return nil
	}
	err := w.drainAll()
	w.closed = true
	if closeErr := w.sink.Close(); err == nil {
		err = closeErr
	}
	return err
}

// drainExceptLast flushes every pending chunk except the most recent,
// whose next_chunk pointers are still unknown.
func (w *ChunkWriter) drainExceptLast() error {
	for len(w.pending) > 1 {
		next := w.pending[1].start
		if err := w.writePending(w.pending[0], &next); err != nil {
			return err
		}
		w.pending = w.pending[1:]
	}
	return nil
}

// drainAll flushes every pending chunk, finalising the last one's
// trailing block headers with next_chunk = 0.
func (w *ChunkWriter) drainAll() error {
	for len(w.pending) > 0 {
		var next *int64
		if len(w.pending) > 1 {
			n := w.pending[1].start
			next = &n
		}
		if err := w.writePending(w.pending[0], next); err != nil {
			return err
		}
		w.pending = w.pending[1:]
	}
	return nil
}

// writePending emits one chunk's physical bytes to the sink,
// inserting a BlockHeader at every boundary the chunk's extent
// touches. nextStart is the start of the following chunk, or nil if
// unknown (in which case every emitted block header's next_chunk is
// 0).
func (w *ChunkWriter) writePending(c pendingChunk, nextStart *int64) error {
	pos := c.start
	nextChunkAt := func(boundary int64) uint64 {
		if nextStart == nil {
			return 0
		}
		distance := *nextStart - boundary
		if distance >= BlockSize {
			return 0
		}
		return uint64(distance)
	}

	if hasBlockHeaderAt(pos) {
		bh := BlockHeader{PreviousChunk: 0, NextChunk: nextChunkAt(pos)}
		if _, err := w.sink.Write(bh.MarshalBinary()); err != nil {
			return fmt.Errorf("riegeli: chunk writer: %w", err)
		}
		pos += BlockHeaderSize
	}

	idx := 0
	for idx < len(c.raw) {
		avail := RemainingInBlock(pos)
		take := avail
		if take > int64(len(c.raw)-idx) {
			take = int64(len(c.raw) - idx)
		}
		if _, err := w.sink.Write(c.raw[idx : idx+int(take)]); err != nil {
			return fmt.Errorf("riegeli: chunk writer: %w", err)
		}
		idx += int(take)
		pos += take

		if idx < len(c.raw) {
			bh := BlockHeader{PreviousChunk: uint64(pos - c.start), NextChunk: nextChunkAt(pos)}
			if _, err := w.sink.Write(bh.MarshalBinary()); err != nil {
				return fmt.Errorf("riegeli: chunk writer: %w", err)
			}
			pos += BlockHeaderSize
		}
	}
	return nil
}
