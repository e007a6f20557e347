// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"encoding/binary"
	"fmt"
)

// ChunkType identifies the kind of chunk a ChunkHeader describes.
// Values are format constants — changing them breaks compatibility
// with every file already written.
type ChunkType uint8

const (
	// ChunkTypeFileSignature marks the chunk at file offset 0 that
	// identifies this file as Riegeli. data_size, num_records, and
	// decoded_data_size are always zero for this type.
	ChunkTypeFileSignature ChunkType = 0

	// ChunkTypeFileMetadata carries an opaque, record-encoder-defined
	// metadata message. num_records is always zero.
	ChunkTypeFileMetadata ChunkType = 1

	// ChunkTypePadding carries no logical records; it exists only to
	// align a following chunk to a block boundary. num_records and
	// decoded_data_size are always zero.
	ChunkTypePadding ChunkType = 2

	// ChunkTypeSimple is the simple (non-transposed) record encoding.
	// This module treats its payload as opaque.
	ChunkTypeSimple ChunkType = 3

	// ChunkTypeTranspose is the transposed record encoding. This
	// module treats its payload as opaque.
	ChunkTypeTranspose ChunkType = 4
)

// String returns the human-readable name of a chunk type.
func (t ChunkType) String() string {
	switch t {
	case ChunkTypeFileSignature:
		return "file_signature"
	case ChunkTypeFileMetadata:
		return "file_metadata"
	case ChunkTypePadding:
		return "padding"
	case ChunkTypeSimple:
		return "simple"
	case ChunkTypeTranspose:
		return "transpose"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// maxChunkType is the highest ChunkType value this module recognises.
// A chunk header carrying a higher value is treated as corrupt: the
// recovery engine cannot trust the rest of the header either.
const maxChunkType = ChunkTypeTranspose

// maxNumRecords is the largest value num_records can hold: it shares
// an 8-byte field with the 1-byte chunk_type, leaving 56 bits.
const maxNumRecords = (uint64(1) << 56) - 1

// ChunkHeader is the fixed 40-byte structure preceding every chunk's
// payload.
type ChunkHeader struct {
	// DataSize is the size of the chunk payload in bytes, as written
	// to disk (i.e. after compression, if any).
	DataSize uint64

	// DataHash is the [Hash] of the on-disk payload bytes.
	DataHash uint64

	// Type is the chunk's kind.
	Type ChunkType

	// NumRecords is the number of logical records in the chunk. Zero
	// for FileSignature, FileMetadata, and Padding chunks.
	NumRecords uint64

	// DecodedDataSize is the uncompressed, unpacked size of the
	// chunk's logical data. Informational: used for seek-within-chunk
	// arithmetic by higher-level record decoders, not verified
	// against the payload by this module.
	DecodedDataSize uint64
}

// MarshalBinary serialises a ChunkHeader to its 40-byte on-disk form.
// Returns an error if NumRecords exceeds 56 bits.
func (h ChunkHeader) MarshalBinary() ([]byte, error) {
	if h.NumRecords > maxNumRecords {
		return nil, fmt.Errorf("riegeli: chunk header: num_records %d exceeds 56-bit limit: %w", h.NumRecords, ErrOverflow)
	}

	buf := make([]byte, ChunkHeaderSize)
	binary.LittleEndian.PutUint64(buf[8:16], h.DataSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.DataHash)

	typeAndCount := uint64(h.Type) | h.NumRecords<<8
	binary.LittleEndian.PutUint64(buf[24:32], typeAndCount)
	binary.LittleEndian.PutUint64(buf[32:40], h.DecodedDataSize)

	binary.LittleEndian.PutUint64(buf[0:8], HeaderHash(buf[8:40]))
	return buf, nil
}

// UnmarshalChunkHeader parses and verifies a 40-byte ChunkHeader.
// Returns an error wrapping [ErrCorrupt] if buf is the wrong length,
// the stored header hash does not match, or the chunk type is
// unrecognised.
func UnmarshalChunkHeader(buf []byte) (ChunkHeader, error) {
	if len(buf) != int(ChunkHeaderSize) {
		return ChunkHeader{}, fmt.Errorf("riegeli: chunk header: want %d bytes, got %d: %w", ChunkHeaderSize, len(buf), ErrCorrupt)
	}

	storedHash := binary.LittleEndian.Uint64(buf[0:8])
	computedHash := HeaderHash(buf[8:40])
	if storedHash != computedHash {
		return ChunkHeader{}, fmt.Errorf("riegeli: chunk header hash mismatch (stored %#x, computed %#x): %w", storedHash, computedHash, ErrCorrupt)
	}

	typeAndCount := binary.LittleEndian.Uint64(buf[24:32])
	chunkType := ChunkType(typeAndCount & 0xff)
	if chunkType > maxChunkType {
		return ChunkHeader{}, fmt.Errorf("riegeli: chunk header: unrecognised chunk type %d: %w", chunkType, ErrCorrupt)
	}

	return ChunkHeader{
		DataSize:        binary.LittleEndian.Uint64(buf[8:16]),
		DataHash:        binary.LittleEndian.Uint64(buf[16:24]),
		Type:            chunkType,
		NumRecords:      typeAndCount >> 8,
		DecodedDataSize: binary.LittleEndian.Uint64(buf[32:40]),
	}, nil
}

// isSignatureValid reports whether h is a well-formed FileSignature
// header: zero data size, zero record count, zero decoded size.
func (h ChunkHeader) isSignatureValid() bool {
	return h.Type == ChunkTypeFileSignature &&
		h.DataSize == 0 &&
		h.NumRecords == 0 &&
		h.DecodedDataSize == 0
}

// chunkBytes returns the total logical length (header + payload) this
// header's chunk occupies, the chunkBytes argument [ChunkEnd] expects.
func (h ChunkHeader) chunkBytes() int64 {
	return ChunkHeaderSize + int64(h.DataSize)
}
