// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashSeed is the fixed 64-bit seed mixed into every [Hash] and
// [HeaderHash] computation. It is a format constant: changing it
// invalidates the header hash of every block and chunk header ever
// written by this package. There is no cryptographic significance to
// the value — it exists purely for domain separation from XXH64's
// unseeded output, the same way the upstream C++ implementation's
// HighwayHash key is a fixed published constant rather than zero.
const HashSeed uint64 = 0x5249454745_4c490a

// seedBytes is HashSeed encoded as 8 little-endian bytes. Computed
// once; every [Hash] call writes it as a prefix into a fresh digest
// rather than concatenating it onto the caller's slice.
var seedBytes = func() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], HashSeed)
	return b
}()

// Hash computes the 64-bit seeded hash of data. This is the hash
// stored in a chunk header's data_hash field, covering the chunk's
// on-disk (possibly compressed) payload bytes.
func Hash(data []byte) uint64 {
	digest := xxhash.New()
	digest.Write(seedBytes[:])
	digest.Write(data)
	return digest.Sum64()
}

// HeaderHash computes the 64-bit seeded hash of a header's trailing
// bytes — the bytes of a BlockHeader or ChunkHeader excluding the
// leading 8-byte stored_header_hash slot itself. Block headers and
// chunk headers both reserve their first 8 bytes for this value.
func HeaderHash(headerTail []byte) uint64 {
	return Hash(headerTail)
}
