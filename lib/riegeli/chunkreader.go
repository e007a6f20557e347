// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"errors"
	"fmt"
	"io"
)

// RecordIndex identifies a logical record by its position in the
// sequence of records a chunk stream encodes, as opposed to a raw
// file byte offset (a plain int64 throughout this package). Keeping
// the two distinct prevents a SeekToChunkAfter(fileOffset) call from
// being passed a record count by mistake, or vice versa.
type RecordIndex int64

// RecoveryKind classifies why a ChunkReader entered its failed state
// and what resynchronising from it requires.
type RecoveryKind int

const (
	// RecoveryNone means the reader is healthy; no recovery pending.
	RecoveryNone RecoveryKind = iota

	// RecoveryFindChunk means the next chunk boundary's location is
	// unknown: the reader must advance to the next block boundary and
	// follow its pointers to find a plausible chunk start.
	RecoveryFindChunk

	// RecoveryHaveChunk means the chunk header was trustworthy (hash
	// verified) but the payload hash did not match: the next chunk's
	// position is known from the header's own data_size.
	RecoveryHaveChunk

	// RecoveryReportSkippedBytes means a read ran into the end of the
	// source with a partial chunk in progress; Close reports the bytes
	// that were never delivered.
	RecoveryReportSkippedBytes
)

// ChunkReader reads a stream of chunks from a Source, transparently
// skipping BlockHeaders and verifying the hashes that protect them and
// the chunk headers and payloads they frame. When a ChunkReader
// encounters corruption, it does not abort: it
// records a RecoveryKind describing how to resynchronise and expects
// the caller to call Recover.
type ChunkReader struct {
	src Source

	pos            int64
	header         ChunkHeader
	headerPulled   bool
	lastBlockHeader BlockHeader

	recoveryKind RecoveryKind
	recoveryPos  int64
	closed       bool
}

// NewChunkReader creates a ChunkReader positioned at the start of src.
func NewChunkReader(src Source) *ChunkReader {
	return &ChunkReader{src: src}
}

// Pos returns the file offset of the chunk the reader is currently
// positioned at (the start of the next chunk PullChunkHeader will
// read).
func (r *ChunkReader) Pos() int64 { return r.pos }

// Recovering reports whether the reader is in a failed state with a
// pending recovery descriptor, and if so, which kind.
func (r *ChunkReader) Recovering() (RecoveryKind, bool) {
	return r.recoveryKind, r.recoveryKind != RecoveryNone
}

func (r *ChunkReader) setRecoverable(kind RecoveryKind, pos int64) {
	r.recoveryKind = kind
	r.recoveryPos = pos
}

// CheckFileFormat verifies that src begins with a well-formed
// FileSignature chunk. It pulls the signature's header the way
// PullChunkHeader does and leaves the reader at offset 0: call
// ReadChunk afterward to consume the signature chunk and advance past
// it, or construct a fresh reader if verification is all that's
// wanted.
func (r *ChunkReader) CheckFileFormat() error {
	if r.pos != 0 {
		return fmt.Errorf("riegeli: chunk reader: CheckFileFormat requires the reader be at offset 0")
	}
	header, err := r.PullChunkHeader()
	if err != nil {
		return err
	}
	if !header.isSignatureValid() {
		r.setRecoverable(RecoveryFindChunk, r.src.Pos())
		return fmt.Errorf("riegeli: chunk reader: missing file signature: %w", ErrCorrupt)
	}
	return nil
}

// PullChunkHeader reads and verifies the ChunkHeader at the reader's
// current position, caching it for a following ReadChunk. On
// corruption it sets a recovery descriptor and returns an error
// wrapping ErrCorrupt.
func (r *ChunkReader) PullChunkHeader() (ChunkHeader, error) {
	if r.closed {
		return ChunkHeader{}, ErrClosed
	}
	chunkStart := r.pos

	if hasBlockHeaderAt(r.src.Pos()) {
		bh, err := r.readBlockHeader()
		if err != nil {
			if errors.Is(err, ErrCorrupt) {
				r.setRecoverable(RecoveryFindChunk, r.src.Pos())
			}
			return ChunkHeader{}, err
		}
		if bh.PreviousChunk != 0 {
			r.setRecoverable(RecoveryFindChunk, r.src.Pos())
			return ChunkHeader{}, fmt.Errorf("riegeli: chunk reader: block header previous_chunk %d, want 0 at chunk start: %w", bh.PreviousChunk, ErrCorrupt)
		}
		r.lastBlockHeader = bh
	}

	headerBytes, err := r.readLogical(chunkStart, ChunkHeaderSize, true)
	if err != nil {
		return ChunkHeader{}, err
	}

	header, err := UnmarshalChunkHeader(headerBytes)
	if err != nil {
		r.setRecoverable(RecoveryFindChunk, r.src.Pos())
		return ChunkHeader{}, err
	}

	r.header = header
	r.headerPulled = true
	return header, nil
}

// ReadChunk reads the payload of the chunk whose header was most
// recently pulled with PullChunkHeader, verifies its data hash, and
// advances the reader past it. It fails if no header is pending.
func (r *ChunkReader) ReadChunk() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if !r.headerPulled {
		return nil, fmt.Errorf("riegeli: chunk reader: ReadChunk called without a pulled header")
	}
	chunkStart := r.pos

	payload, err := r.readLogical(chunkStart, int64(r.header.DataSize), true)
	if err != nil {
		return nil, err
	}

	if Hash(payload) != r.header.DataHash {
		r.setRecoverable(RecoveryHaveChunk, r.src.Pos())
		return nil, fmt.Errorf("riegeli: chunk reader: payload hash mismatch: %w", ErrCorrupt)
	}

	r.pos = ChunkEnd(chunkStart, ChunkHeaderSize+int64(r.header.DataSize))
	r.headerPulled = false
	return payload, nil
}

// Seek positions the reader at file offset p, which must satisfy
// PossibleChunkBoundary. If p is not actually a chunk boundary,
// subsequent reads fail with RecoveryFindChunk.
func (r *ChunkReader) Seek(p int64) error {
	if !PossibleChunkBoundary(p) {
		return fmt.Errorf("riegeli: chunk reader: seek to %d is not a possible chunk boundary", p)
	}
	if err := r.src.Seek(p); err != nil {
		return fmt.Errorf("riegeli: chunk reader: %w", err)
	}
	r.pos = p
	r.headerPulled = false
	r.recoveryKind = RecoveryNone
	return nil
}

// SeekToChunkAfter positions the reader at the first chunk boundary at
// or after file offset p.
func (r *ChunkReader) SeekToChunkAfter(p int64) error {
	blockBegin := (p / BlockSize) * BlockSize
	if err := r.jumpToBlockAndResync(blockBegin); err != nil {
		return err
	}
	for r.pos < p {
		if _, err := r.PullChunkHeader(); err != nil {
			return err
		}
		if _, err := r.ReadChunk(); err != nil {
			return err
		}
	}
	return nil
}

// SeekToChunkContaining positions the reader at the chunk whose record
// range [recordBase, recordBase+NumRecords) contains idx, scanning
// forward from the start of the file. This reader does not maintain a
// persistent record-count index, so unlike SeekToChunkAfter it cannot
// jump directly to a nearby block: every call re-walks chunk headers
// from offset 0.
func (r *ChunkReader) SeekToChunkContaining(idx RecordIndex) error {
	if err := r.Seek(0); err != nil {
		return err
	}
	var recordBase RecordIndex
	for {
		header, err := r.PullChunkHeader()
		if err != nil {
			return err
		}
		count := RecordIndex(header.NumRecords)
		if idx >= recordBase && idx < recordBase+count {
			return r.Seek(r.pos)
		}
		if _, err := r.ReadChunk(); err != nil {
			return err
		}
		recordBase += count
	}
}

// Recover resynchronises a failed reader per its pending
// RecoveryKind, incrementing *skipped by the number of bytes jumped
// over. It is a precondition that the reader is currently failed
// (Recovering returns true).
func (r *ChunkReader) Recover(skipped *int64) error {
	kind := r.recoveryKind
	if kind == RecoveryNone {
		return fmt.Errorf("riegeli: chunk reader: Recover called with no pending recovery")
	}

	start := r.pos
	switch kind {
	case RecoveryHaveChunk:
		*skipped += r.recoveryPos - start
		r.pos = ChunkEnd(start, ChunkHeaderSize+int64(r.header.DataSize))
		r.headerPulled = false
		r.recoveryKind = RecoveryNone
		return r.src.Seek(r.pos)

	case RecoveryFindChunk:
		*skipped += r.recoveryPos - start
		blockBegin := ((r.recoveryPos + BlockSize - 1) / BlockSize) * BlockSize
		if err := r.jumpToBlockAndResync(blockBegin); err != nil {
			return err
		}
		r.recoveryKind = RecoveryNone
		return nil

	case RecoveryReportSkippedBytes:
		*skipped += r.recoveryPos - start
		r.recoveryKind = RecoveryNone
		return fmt.Errorf("riegeli: chunk reader: reader closed with a partial chunk in progress")

	default:
		return fmt.Errorf("riegeli: chunk reader: unknown recovery kind %d", kind)
	}
}

// jumpToBlockAndResync seeks to blockBegin, reads its BlockHeader, and
// follows next_chunk to a plausible chunk start, advancing one block
// at a time if next_chunk is zero or invalid. Any hash failure
// encountered while resyncing re-enters recovery at the next block
// rather than terminating.
func (r *ChunkReader) jumpToBlockAndResync(blockBegin int64) error {
	// Offset 0 carries no physical BlockHeader: a chunk (the file
	// signature) starts there directly.
	if blockBegin == 0 {
		return r.Seek(0)
	}
	size, err := r.src.Size()
	if err != nil {
		return fmt.Errorf("riegeli: chunk reader: %w", err)
	}
	for {
		if blockBegin >= size {
			// The resync walk ran off the end of the file: there is
			// nothing left to find a chunk in. Land at EOF instead of
			// attempting (and failing) a seek past it; the next read
			// reports io.EOF like any other exhausted stream.
			return r.seekUnchecked(size)
		}
		if err := r.Seek(blockBegin); err != nil {
			return err
		}
		bh, err := r.readBlockHeader()
		if err != nil {
			blockBegin += BlockSize
			continue
		}
		r.lastBlockHeader = bh

		if bh.PreviousChunk == 0 {
			r.pos = blockBegin
			return nil
		}
		if bh.NextChunk == 0 {
			blockBegin += BlockSize
			continue
		}
		candidate := blockBegin + int64(bh.NextChunk)
		if !PossibleChunkBoundary(candidate) {
			blockBegin += BlockSize
			continue
		}
		if err := r.Seek(candidate); err != nil {
			return err
		}
		return nil
	}
}

// seekUnchecked positions the reader at p without requiring p to be a
// PossibleChunkBoundary, for the one case where landing past the end
// of the file is the correct outcome rather than an error.
func (r *ChunkReader) seekUnchecked(p int64) error {
	if err := r.src.Seek(p); err != nil {
		return fmt.Errorf("riegeli: chunk reader: %w", err)
	}
	r.pos = p
	r.headerPulled = false
	r.recoveryKind = RecoveryNone
	return nil
}

// readBlockHeader reads and verifies the 24-byte BlockHeader at the
// source's current position. On a malformed header it does not set
// recovery itself — callers decide the recovery position, since the
// meaning differs between PullChunkHeader's pre-check and
// jumpToBlockAndResync's probing.
func (r *ChunkReader) readBlockHeader() (BlockHeader, error) {
	buf := make([]byte, BlockHeaderSize)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return BlockHeader{}, r.classifyReadErr(err)
	}
	return UnmarshalBlockHeader(buf)
}

// readLogical reads n logical content bytes starting at the source's
// current physical position, transparently consuming and verifying
// any BlockHeaders crossed along the way. chunkStart is the start
// offset of the chunk these bytes belong to, used to check each
// crossed BlockHeader's previous_chunk when verifyPrev is set.
func (r *ChunkReader) readLogical(chunkStart, n int64, verifyPrev bool) ([]byte, error) {
	content := make([]byte, 0, n)
	for int64(len(content)) < n {
		pos := r.src.Pos()
		avail := RemainingInBlock(pos)
		take := avail
		if remain := n - int64(len(content)); take > remain {
			take = remain
		}
		buf := make([]byte, take)
		if _, err := io.ReadFull(r.src, buf); err != nil {
			return nil, r.classifyReadErr(err)
		}
		content = append(content, buf...)

		if int64(len(content)) < n {
			newPos := r.src.Pos()
			if hasBlockHeaderAt(newPos) {
				bh, err := r.readBlockHeader()
				if err != nil {
					r.setRecoverable(RecoveryFindChunk, newPos)
					return nil, err
				}
				if verifyPrev && bh.PreviousChunk != uint64(newPos-chunkStart) {
					r.setRecoverable(RecoveryFindChunk, newPos)
					return nil, fmt.Errorf("riegeli: chunk reader: block header previous_chunk %d, want %d at %d: %w", bh.PreviousChunk, newPos-chunkStart, newPos, ErrCorrupt)
				}
				r.lastBlockHeader = bh
			}
		}
	}
	return content, nil
}

// classifyReadErr turns a Source read error into the error this
// package reports: an unhealthy source's error is propagated as a
// fatal, non-recoverable failure; a truncation while a chunk is
// in progress marks RecoveryReportSkippedBytes for Close to report,
// while an end of stream exactly at the current chunk position sets
// no recovery descriptor.
func (r *ChunkReader) classifyReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if r.src.Pos() != r.pos {
			r.setRecoverable(RecoveryReportSkippedBytes, r.src.Pos())
		}
		return fmt.Errorf("riegeli: chunk reader: truncated stream at %d: %w", r.src.Pos(), err)
	}
	return fmt.Errorf("riegeli: chunk reader: byte source failure: %w", err)
}

// Close marks the reader closed. If a chunk was in progress, or the
// reader was left with a pending RecoveryReportSkippedBytes descriptor
// (a truncation encountered while reading a header or payload), the
// returned error wraps ErrRecoverable and reports the number of bytes
// that were never delivered to the caller.
func (r *ChunkReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.recoveryKind == RecoveryReportSkippedBytes {
		skipped := r.recoveryPos - r.pos
		return fmt.Errorf("riegeli: chunk reader: closed with %d bytes unread after truncation: %w", skipped, ErrRecoverable)
	}
	if r.headerPulled {
		return fmt.Errorf("riegeli: chunk reader: closed with a chunk in progress at %d: %w", r.pos, ErrRecoverable)
	}
	return nil
}
