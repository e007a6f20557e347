// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// CompressionType identifies the codec wrapping a chunk's payload.
// Stored in the caller's own bookkeeping (typically alongside the
// ChunkHeader); not itself a field of ChunkHeader.
type CompressionType uint8

const (
	// CompressionNone passes bytes through unmodified.
	CompressionNone CompressionType = 0

	// CompressionBrotli compresses with Brotli.
	CompressionBrotli CompressionType = 1

	// CompressionZstd compresses with Zstd.
	CompressionZstd CompressionType = 2
)

// String returns the human-readable name of a compression type.
func (t CompressionType) String() string {
	switch t {
	case CompressionNone:
		return "none"
	case CompressionBrotli:
		return "brotli"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// CompressorOptions configures a Compressor. Level selects the codec's
// compression level (zero picks the codec default). WindowLog and
// SizeHint are carried in the options but neither codec reads them.
type CompressorOptions struct {
	Type      CompressionType
	Level     int
	WindowLog int
	SizeHint  uint64
}

// Compressor accumulates uncompressed bytes and, on Finish, emits the
// framed blob described in the package's compressor contract: for
// CompressionNone, the bytes verbatim; otherwise a varint of the
// original byte count followed by the codec's compressed output.
//
// A Compressor is single-use: Write after Finish, or Finish twice, is
// a programming error and returns ErrClosed.
type Compressor struct {
	opts   CompressorOptions
	buf    bytes.Buffer
	closed bool
}

// NewCompressor creates a Compressor with the given options.
func NewCompressor(opts CompressorOptions) *Compressor {
	return &Compressor{opts: opts}
}

// Write accumulates p into the compressor's pending payload.
func (c *Compressor) Write(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	return c.buf.Write(p)
}

// Finish encodes the accumulated bytes and appends the framed result
// to dst, returning the extended slice.
func (c *Compressor) Finish(dst []byte) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	c.closed = true

	raw := c.buf.Bytes()
	switch c.opts.Type {
	case CompressionNone:
		return append(dst, raw...), nil

	case CompressionBrotli:
		dst = WriteVarint64(dst, uint64(len(raw)))
		return appendBrotli(dst, raw, c.opts)

	case CompressionZstd:
		dst = WriteVarint64(dst, uint64(len(raw)))
		return appendZstd(dst, raw, c.opts)

	default:
		return nil, fmt.Errorf("riegeli: compressor: unsupported compression type %d", c.opts.Type)
	}
}

func appendBrotli(dst, raw []byte, opts CompressorOptions) ([]byte, error) {
	var buf bytes.Buffer
	level := opts.Level
	if level == 0 {
		level = brotli.DefaultCompression
	}
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("riegeli: brotli compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("riegeli: brotli compress: %w", err)
	}
	return append(dst, buf.Bytes()...), nil
}

func appendZstd(dst, raw []byte, opts CompressorOptions) ([]byte, error) {
	level := zstdLevel(opts.Level)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("riegeli: zstd compressor: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, dst), nil
}

// zstdLevel maps a generic 1-9 level hint onto klauspost/compress's
// coarser four-tier EncoderLevel, defaulting to SpeedDefault when no
// level was requested.
func zstdLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 0:
		return zstd.SpeedDefault
	case level <= 2:
		return zstd.SpeedFastest
	case level <= 6:
		return zstd.SpeedDefault
	case level <= 8:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Decompress reverses a Compressor's framing: given the full on-disk
// payload bytes for a chunk and the CompressionType that produced
// them, it returns the original uncompressed bytes. For
// CompressionNone, payload is returned as-is (no copy). Otherwise the
// leading varint is parsed as the expected uncompressed length, the
// remainder is decoded, and a length mismatch is reported as
// ErrCorrupt.
func Decompress(payload []byte, ctype CompressionType) ([]byte, error) {
	switch ctype {
	case CompressionNone:
		return payload, nil

	case CompressionBrotli:
		uncompressedSize, body, err := splitLengthPrefix(payload)
		if err != nil {
			return nil, err
		}
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("riegeli: brotli decompress: %w: %w", err, ErrCorrupt)
		}
		if uint64(len(out)) != uncompressedSize {
			return nil, fmt.Errorf("riegeli: brotli decompress: got %d bytes, expected %d: %w", len(out), uncompressedSize, ErrCorrupt)
		}
		return out, nil

	case CompressionZstd:
		uncompressedSize, body, err := splitLengthPrefix(payload)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("riegeli: zstd decompressor: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(body, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("riegeli: zstd decompress: %w: %w", err, ErrCorrupt)
		}
		if uint64(len(out)) != uncompressedSize {
			return nil, fmt.Errorf("riegeli: zstd decompress: got %d bytes, expected %d: %w", len(out), uncompressedSize, ErrCorrupt)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("riegeli: decompress: unsupported compression type %d: %w", ctype, ErrCorrupt)
	}
}

// splitLengthPrefix reads the leading uncompressed-length varint from
// a compressed payload and returns it along with the remaining bytes.
func splitLengthPrefix(payload []byte) (uint64, []byte, error) {
	r := bytes.NewReader(payload)
	size, err := ReadVarint64(r)
	if err != nil {
		return 0, nil, fmt.Errorf("riegeli: decompress: reading length prefix: %w: %w", err, ErrCorrupt)
	}
	rest := payload[len(payload)-r.Len():]
	return size, rest, nil
}
