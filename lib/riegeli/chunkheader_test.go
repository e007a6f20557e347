// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"errors"
	"testing"
)

func TestChunkHeaderRoundtrip(t *testing.T) {
	h := ChunkHeader{
		DataSize:        1234,
		DataHash:        Hash([]byte("payload")),
		Type:            ChunkTypeSimple,
		NumRecords:      42,
		DecodedDataSize: 5000,
	}
	buf, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(buf) != int(ChunkHeaderSize) {
		t.Fatalf("marshaled length = %d, want %d", len(buf), ChunkHeaderSize)
	}

	got, err := UnmarshalChunkHeader(buf)
	if err != nil {
		t.Fatalf("UnmarshalChunkHeader: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestChunkHeaderNumRecordsOverflow(t *testing.T) {
	h := ChunkHeader{Type: ChunkTypeSimple, NumRecords: maxNumRecords + 1}
	if _, err := h.MarshalBinary(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestChunkHeaderMaxNumRecords(t *testing.T) {
	h := ChunkHeader{Type: ChunkTypeTranspose, NumRecords: maxNumRecords}
	buf, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got, err := UnmarshalChunkHeader(buf)
	if err != nil {
		t.Fatalf("UnmarshalChunkHeader: %v", err)
	}
	if got.NumRecords != maxNumRecords {
		t.Fatalf("NumRecords = %d, want %d", got.NumRecords, maxNumRecords)
	}
}

func TestChunkHeaderCorruptedHash(t *testing.T) {
	h := ChunkHeader{Type: ChunkTypeSimple, DataSize: 10}
	buf, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	buf[30] ^= 0xff

	if _, err := UnmarshalChunkHeader(buf); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestChunkHeaderUnrecognisedType(t *testing.T) {
	h := ChunkHeader{Type: ChunkType(200)}
	buf, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if _, err := UnmarshalChunkHeader(buf); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for unrecognised chunk type, got %v", err)
	}
}

func TestChunkHeaderWrongLength(t *testing.T) {
	if _, err := UnmarshalChunkHeader(make([]byte, 39)); !errors.Is(err, ErrCorrupt) {
		t.Fatal("expected ErrCorrupt for wrong length")
	}
}

func TestIsSignatureValid(t *testing.T) {
	sig := ChunkHeader{Type: ChunkTypeFileSignature, DataHash: Hash(nil)}
	if !sig.isSignatureValid() {
		t.Fatal("well-formed signature header reported invalid")
	}
	notSig := ChunkHeader{Type: ChunkTypeSimple}
	if notSig.isSignatureValid() {
		t.Fatal("non-signature header reported valid")
	}
}
