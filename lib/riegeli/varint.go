// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"fmt"
	"io"
)

// maxVarint64Bytes is the longest a 64-bit unsigned LEB128 encoding
// can be: ceil(64/7) = 10 bytes, the tenth carrying only 1 payload bit.
const maxVarint64Bytes = 10

// maxVarint32Bytes is the longest a 32-bit unsigned LEB128 encoding
// can be: ceil(32/7) = 5 bytes.
const maxVarint32Bytes = 5

// WriteVarint64 appends the LEB128 encoding of v to dst and returns
// the extended slice.
func WriteVarint64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// WriteVarint32 appends the LEB128 encoding of v to dst and returns
// the extended slice.
func WriteVarint32(dst []byte, v uint32) []byte {
	return WriteVarint64(dst, uint64(v))
}

// ReadVarint64 reads an LEB128-encoded uint64 from r. It fails if the
// stream ends mid-varint, if the encoding is longer than 10 bytes, or
// if it is overlong (the encoding has a continuation byte beyond the
// point where no further payload bits are needed — concretely, a
// trailing byte of 0x00 or 0x80 that contributes nothing to the
// value).
func ReadVarint64(r io.ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarint64Bytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				return 0, fmt.Errorf("riegeli: varint: truncated stream mid-varint")
			}
			return 0, err
		}

		payload := b & 0x7f

		// The 10th byte of a 64-bit varint only has room for 1
		// payload bit (63 = 9*7); a 10th byte with any other bit set
		// overflows the 64-bit result.
		if i == maxVarint64Bytes-1 && payload > 1 {
			return 0, fmt.Errorf("riegeli: varint: value overflows 64 bits: %w", ErrOverflow)
		}

		result |= uint64(payload) << shift
		if b&0x80 == 0 {
			// Overlong encoding: a terminal (non-continuation) byte
			// that contributes nothing is only legal as the very
			// first byte (the single-byte encoding of zero).
			if payload == 0 && i > 0 {
				return 0, fmt.Errorf("riegeli: varint: overlong encoding (zero trailing byte)")
			}
			return result, nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("riegeli: varint: encoding exceeds %d bytes", maxVarint64Bytes)
}

// ReadVarint32 reads an LEB128-encoded uint32 from r, rejecting
// values that do not fit in 32 bits.
func ReadVarint32(r io.ByteReader) (uint32, error) {
	v, err := ReadVarint64(r)
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, fmt.Errorf("riegeli: varint: value %d overflows 32 bits: %w", v, ErrOverflow)
	}
	return uint32(v), nil
}
