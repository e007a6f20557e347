// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"bytes"
	"testing"
)

// TestCompressRoundtrip matches scenario S7: for each of the three
// codecs, writing repetitive text through a Compressor and reversing
// it through Decompress must reproduce the original bytes exactly.
func TestCompressRoundtrip(t *testing.T) {
	original := bytes.Repeat([]byte("riegeli record container format "), 6000) // ~200KB

	for _, ctype := range []CompressionType{CompressionNone, CompressionBrotli, CompressionZstd} {
		t.Run(ctype.String(), func(t *testing.T) {
			c := NewCompressor(CompressorOptions{Type: ctype})
			if _, err := c.Write(original); err != nil {
				t.Fatalf("Write: %v", err)
			}
			framed, err := c.Finish(nil)
			if err != nil {
				t.Fatalf("Finish: %v", err)
			}

			if ctype != CompressionNone && len(framed) >= len(original) {
				t.Errorf("%s: compressed size %d not smaller than original %d", ctype, len(framed), len(original))
			}

			decoded, err := Decompress(framed, ctype)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(decoded, original) {
				t.Fatalf("%s: decompressed data does not match original", ctype)
			}
		})
	}
}

func TestCompressEmptyPayload(t *testing.T) {
	for _, ctype := range []CompressionType{CompressionNone, CompressionBrotli, CompressionZstd} {
		c := NewCompressor(CompressorOptions{Type: ctype})
		framed, err := c.Finish(nil)
		if err != nil {
			t.Fatalf("%s: Finish: %v", ctype, err)
		}
		decoded, err := Decompress(framed, ctype)
		if err != nil {
			t.Fatalf("%s: Decompress: %v", ctype, err)
		}
		if len(decoded) != 0 {
			t.Fatalf("%s: decoded %d bytes, want 0", ctype, len(decoded))
		}
	}
}

func TestCompressorDoubleFinish(t *testing.T) {
	c := NewCompressor(CompressorOptions{Type: CompressionNone})
	if _, err := c.Finish(nil); err != nil {
		t.Fatalf("first Finish: %v", err)
	}
	if _, err := c.Finish(nil); err != ErrClosed {
		t.Fatalf("second Finish: got %v, want ErrClosed", err)
	}
}

func TestDecompressLengthMismatch(t *testing.T) {
	c := NewCompressor(CompressorOptions{Type: CompressionZstd})
	c.Write(bytes.Repeat([]byte("x"), 1000))
	framed, err := c.Finish(nil)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	// Corrupt the leading uncompressed-length varint so it disagrees
	// with the actual decoded length: 1000 encodes as [0xe8, 0x07], and
	// flipping the low bit of the first byte makes it 1001 while the
	// varint keeps its two-byte length.
	tampered := append([]byte{}, framed...)
	tampered[0] ^= 0x01

	if _, err := Decompress(tampered, CompressionZstd); err == nil {
		t.Fatal("expected length mismatch to be reported")
	}
}
