// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// buildSingleChunkFile writes a signature chunk followed by one chunk
// whose payload is large enough to cross exactly one block boundary
// (the S2/S4 scenario shape: a single interior BlockHeader at 65536),
// and returns the raw bytes.
func buildSingleChunkFile(t *testing.T, payloadSize int) []byte {
	t.Helper()
	mw := NewMemoryWriter()
	w, err := NewChunkWriter(mw, ChunkWriterOptions{})
	if err != nil {
		t.Fatalf("NewChunkWriter: %v", err)
	}
	payload := bytes.Repeat([]byte{0x42}, payloadSize)
	if err := w.Append(ChunkHeader{Type: ChunkTypeSimple, NumRecords: 1}, payload); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return mw.Bytes()
}

// buildMultiBlockFile writes a signature chunk followed by n
// record chunks, each large enough that the file spans several
// blocks, and returns the raw bytes plus the payloads written.
func buildMultiBlockFile(t *testing.T, n int) ([]byte, [][]byte) {
	t.Helper()
	mw := NewMemoryWriter()
	w, err := NewChunkWriter(mw, ChunkWriterOptions{})
	if err != nil {
		t.Fatalf("NewChunkWriter: %v", err)
	}
	var payloads [][]byte
	for i := 0; i < n; i++ {
		p := bytes.Repeat([]byte{byte('A' + i)}, int(BlockSize)/2+17)
		payloads = append(payloads, p)
		if err := w.Append(ChunkHeader{Type: ChunkTypeSimple, NumRecords: 1}, p); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return mw.Bytes(), payloads
}

func TestChunkReaderCheckFileFormatRejectsGarbage(t *testing.T) {
	r := NewChunkReader(NewMemoryReader([]byte("not a riegeli file at all, just garbage bytes")))
	if err := r.CheckFileFormat(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestChunkReaderRecoverFromCorruptChunkHeader(t *testing.T) {
	data, payloads := buildMultiBlockFile(t, 4)

	r := NewChunkReader(NewMemoryReader(data))
	if err := r.CheckFileFormat(); err != nil {
		t.Fatalf("CheckFileFormat: %v", err)
	}
	if _, err := r.ReadChunk(); err != nil {
		t.Fatalf("signature payload: %v", err)
	}

	// Read the first chunk cleanly.
	if _, err := r.PullChunkHeader(); err != nil {
		t.Fatalf("PullChunkHeader(0): %v", err)
	}
	got0, err := r.ReadChunk()
	if err != nil {
		t.Fatalf("ReadChunk(0): %v", err)
	}
	if !bytes.Equal(got0, payloads[0]) {
		t.Fatal("first chunk payload mismatch")
	}

	// Corrupt the second chunk's header in the underlying bytes, then
	// build a fresh reader over the corrupted file and skip past the
	// first chunk the same way.
	corrupted := append([]byte{}, data...)
	secondChunkStart := r.Pos()
	corrupted[secondChunkStart+10] ^= 0xff

	cr := NewChunkReader(NewMemoryReader(corrupted))
	if err := cr.CheckFileFormat(); err != nil {
		t.Fatalf("CheckFileFormat: %v", err)
	}
	if _, err := cr.ReadChunk(); err != nil {
		t.Fatalf("signature payload: %v", err)
	}
	if _, err := cr.PullChunkHeader(); err != nil {
		t.Fatalf("PullChunkHeader(0): %v", err)
	}
	if _, err := cr.ReadChunk(); err != nil {
		t.Fatalf("ReadChunk(0): %v", err)
	}

	if _, err := cr.PullChunkHeader(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt pulling the corrupted header, got %v", err)
	}
	kind, recovering := cr.Recovering()
	if !recovering || kind != RecoveryFindChunk {
		t.Fatalf("expected RecoveryFindChunk, got kind=%v recovering=%v", kind, recovering)
	}

	var skipped int64
	if err := cr.Recover(&skipped); err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if skipped <= 0 {
		t.Fatalf("expected positive skipped byte count, got %d", skipped)
	}

	// After recovery, the reader should be able to continue reading
	// remaining well-formed chunks (the third and fourth, chunk 2 is
	// the one whose header was corrupted and is lost).
	var recovered [][]byte
	for {
		if _, err := cr.PullChunkHeader(); err != nil {
			break
		}
		payload, err := cr.ReadChunk()
		if err != nil {
			break
		}
		recovered = append(recovered, payload)
	}
	if len(recovered) == 0 {
		t.Fatal("expected at least one chunk to be read after recovery")
	}
}

func TestChunkReaderHaveChunkRecoveryOnPayloadMismatch(t *testing.T) {
	data, _ := buildMultiBlockFile(t, 2)

	// Corrupt a payload byte well inside the first real chunk (after
	// the signature) without touching its header, so the header hash
	// still verifies but the payload hash will not.
	r := NewChunkReader(NewMemoryReader(data))
	if err := r.CheckFileFormat(); err != nil {
		t.Fatalf("CheckFileFormat: %v", err)
	}
	if _, err := r.ReadChunk(); err != nil {
		t.Fatalf("signature payload: %v", err)
	}
	firstChunkStart := r.Pos()

	corrupted := append([]byte{}, data...)
	corrupted[firstChunkStart+ChunkHeaderSize+5] ^= 0xff

	cr := NewChunkReader(NewMemoryReader(corrupted))
	if err := cr.CheckFileFormat(); err != nil {
		t.Fatalf("CheckFileFormat: %v", err)
	}
	if _, err := cr.ReadChunk(); err != nil {
		t.Fatalf("signature payload: %v", err)
	}

	if _, err := cr.PullChunkHeader(); err != nil {
		t.Fatalf("PullChunkHeader: %v", err)
	}
	if _, err := cr.ReadChunk(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt from payload hash mismatch, got %v", err)
	}
	kind, recovering := cr.Recovering()
	if !recovering || kind != RecoveryHaveChunk {
		t.Fatalf("expected RecoveryHaveChunk, got kind=%v recovering=%v", kind, recovering)
	}

	var skipped int64
	if err := cr.Recover(&skipped); err != nil {
		t.Fatalf("Recover: %v", err)
	}

	// The next chunk boundary was already known (HaveChunk), so the
	// following chunk must now be readable.
	if _, err := cr.PullChunkHeader(); err != nil {
		t.Fatalf("PullChunkHeader after HaveChunk recovery: %v", err)
	}
}

func TestChunkReaderSeekToChunkAfter(t *testing.T) {
	data, payloads := buildMultiBlockFile(t, 4)

	r := NewChunkReader(NewMemoryReader(data))
	if err := r.SeekToChunkAfter(BlockSize); err != nil {
		t.Fatalf("SeekToChunkAfter: %v", err)
	}
	if r.Pos() < BlockSize {
		t.Fatalf("SeekToChunkAfter landed at %d, before requested offset %d", r.Pos(), BlockSize)
	}

	header, err := r.PullChunkHeader()
	if err != nil {
		t.Fatalf("PullChunkHeader: %v", err)
	}
	payload, err := r.ReadChunk()
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	found := false
	for _, p := range payloads {
		if bytes.Equal(p, payload) {
			found = true
		}
	}
	if !found {
		t.Fatalf("chunk at seek target (type %v) did not match any written payload", header.Type)
	}
}

func TestChunkReaderSeekToChunkContaining(t *testing.T) {
	mw := NewMemoryWriter()
	w, err := NewChunkWriter(mw, ChunkWriterOptions{})
	if err != nil {
		t.Fatalf("NewChunkWriter: %v", err)
	}
	counts := []uint64{3, 5, 2}
	for _, c := range counts {
		if err := w.Append(ChunkHeader{Type: ChunkTypeSimple, NumRecords: c}, []byte("records")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewChunkReader(NewMemoryReader(mw.Bytes()))
	// Record index 3 is the first record of the second chunk (records
	// 0-2 belong to the first chunk, 3-7 to the second).
	if err := r.SeekToChunkContaining(3); err != nil {
		t.Fatalf("SeekToChunkContaining: %v", err)
	}
	header, err := r.PullChunkHeader()
	if err != nil {
		t.Fatalf("PullChunkHeader: %v", err)
	}
	if header.NumRecords != counts[1] {
		t.Fatalf("landed on chunk with NumRecords=%d, want %d", header.NumRecords, counts[1])
	}
}

// TestChunkReaderRecoverFromCorruptBlockHeaderThenEOF is scenario S4:
// corrupting the file's only interior BlockHeader (at offset 65536)
// must fail the chunk read with RecoveryFindChunk, and recovering from
// it must succeed even though the resync walk runs off the end of the
// file — landing at EOF rather than erroring.
func TestChunkReaderRecoverFromCorruptBlockHeaderThenEOF(t *testing.T) {
	data := buildSingleChunkFile(t, 70000)

	corrupted := append([]byte{}, data...)
	corrupted[65536+5] ^= 0xff

	r := NewChunkReader(NewMemoryReader(corrupted))
	if err := r.CheckFileFormat(); err != nil {
		t.Fatalf("CheckFileFormat: %v", err)
	}
	if _, err := r.ReadChunk(); err != nil {
		t.Fatalf("signature payload: %v", err)
	}

	if _, err := r.PullChunkHeader(); err != nil {
		t.Fatalf("PullChunkHeader: %v", err)
	}
	if _, err := r.ReadChunk(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt reading across the corrupted block header, got %v", err)
	}
	kind, recovering := r.Recovering()
	if !recovering || kind != RecoveryFindChunk {
		t.Fatalf("expected RecoveryFindChunk, got kind=%v recovering=%v", kind, recovering)
	}

	var skipped int64
	if err := r.Recover(&skipped); err != nil {
		t.Fatalf("Recover: %v", err)
	}

	if _, err := r.PullChunkHeader(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after recovery exhausts the file, got %v", err)
	}
}

// TestChunkReaderCloseReportsSkippedBytesOnTruncatedHeader is scenario
// S6: truncating a file to 40+20 bytes lands mid the second chunk's
// header. Close must fail, reporting the 20 bytes that were never
// delivered.
func TestChunkReaderCloseReportsSkippedBytesOnTruncatedHeader(t *testing.T) {
	data := buildSingleChunkFile(t, 70000)
	truncated := data[:40+20]

	r := NewChunkReader(NewMemoryReader(truncated))
	if err := r.CheckFileFormat(); err != nil {
		t.Fatalf("CheckFileFormat: %v", err)
	}
	if _, err := r.ReadChunk(); err != nil {
		t.Fatalf("signature payload: %v", err)
	}

	if _, err := r.PullChunkHeader(); err == nil {
		t.Fatal("expected PullChunkHeader to fail on a truncated header")
	}
	kind, recovering := r.Recovering()
	if !recovering || kind != RecoveryReportSkippedBytes {
		t.Fatalf("expected RecoveryReportSkippedBytes, got kind=%v recovering=%v", kind, recovering)
	}

	err := r.Close()
	if !errors.Is(err, ErrRecoverable) {
		t.Fatalf("expected Close to fail wrapping ErrRecoverable, got %v", err)
	}
	if !strings.Contains(err.Error(), "20 bytes") {
		t.Fatalf("expected Close error to report 20 skipped bytes, got %q", err.Error())
	}
}
