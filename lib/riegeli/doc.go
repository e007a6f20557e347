// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package riegeli implements the framed storage core of the Riegeli
// record container format: block-aligned physical framing with
// variable-length chunks striped across it, chunk-level hashing and
// compression, and a verified read path with corruption recovery.
//
// The package is organized in layers, each usable independently:
//
//   - Hashing: a 64-bit non-cryptographic hash ([Hash], [HeaderHash])
//     used to protect both the 24-byte block header and the 40-byte
//     chunk header. The hash and its seed are part of the on-disk
//     format — see [HashSeed].
//
//   - Geometry: pure arithmetic over a fixed [BlockSize] — block
//     boundaries, remaining bytes in a block or its header region,
//     and the [ChunkEnd] computation that accounts for block headers
//     a chunk's extent straddles.
//
//   - Compression: a per-chunk transparent codec with three members
//     (none, Brotli, Zstd). Chunk hashes are computed on the
//     compressed, on-disk payload (the chunk header's data_hash
//     covers exactly the bytes the reader reads back), while the
//     compressor itself prepends the uncompressed length so a reader
//     can presize its output buffer without decompressing.
//
//   - Chunk writer: stripes one chunk (header + payload) across
//     blocks, weaving in a block header at every boundary crossed,
//     and buffers a configurable number of chunks so that a block
//     header's forward pointer can be computed before it is emitted.
//
//   - Chunk reader: pulls chunks, verifies both header and payload
//     hashes, exposes random access by record index or file offset,
//     and — on detecting corruption — exposes a recovery descriptor
//     the caller can apply with [ChunkReader.Recover] to resynchronise
//     at the next verifiable chunk boundary.
//
//   - Byte source/sink adapters: concrete implementations of the
//     narrow reader/writer interfaces the core depends on, over an
//     in-memory buffer and over an *os.File, so the package is
//     exercisable end to end without a caller supplying its own I/O
//     layer.
//
// This package does not parse record payloads: chunk payloads are
// opaque bytes, and the proto-specific "simple" and "transpose"
// record encodings are out of scope. A chunk's num_records and
// decoded_data_size fields are carried through verbatim for whatever
// higher-level record decoder the caller plugs in.
package riegeli
