// Copyright 2026 The Riegeli-Go Authors
// SPDX-License-Identifier: Apache-2.0

package riegeli

// BlockSize is the fixed physical block size. Every non-zero multiple
// of BlockSize carries a [BlockHeaderSize]-byte BlockHeader; offset 0
// does not (see hasBlockHeaderAt). This is a format constant.
const BlockSize int64 = 65536

// BlockHeaderSize is the fixed size of a BlockHeader in bytes.
const BlockHeaderSize int64 = 24

// ChunkHeaderSize is the fixed size of a ChunkHeader in bytes.
const ChunkHeaderSize int64 = 40

// IsBlockBoundary reports whether pos is a multiple of BlockSize.
func IsBlockBoundary(pos int64) bool {
	return pos%BlockSize == 0
}

// RemainingInBlock returns the number of bytes from pos to the start
// of the next block (BlockSize if pos is itself a block boundary).
func RemainingInBlock(pos int64) int64 {
	offset := pos % BlockSize
	if offset == 0 {
		return BlockSize
	}
	return BlockSize - offset
}

// RemainingInBlockHeader returns the number of bytes remaining in the
// BlockHeader region starting at pos, or 0 if pos is already past the
// header region of its block.
func RemainingInBlockHeader(pos int64) int64 {
	offset := pos % BlockSize
	if offset >= BlockHeaderSize {
		return 0
	}
	return BlockHeaderSize - offset
}

// PossibleChunkBoundary reports whether pos is a legal chunk-start
// offset: either exactly a block boundary (where a BlockHeader
// precedes the chunk) or strictly past the BlockHeader region of its
// block.
func PossibleChunkBoundary(pos int64) bool {
	offset := pos % BlockSize
	return offset == 0 || offset >= BlockHeaderSize
}

// hasBlockHeaderAt reports whether a physical BlockHeader occupies
// pos. Every block boundary carries one except offset 0: the start
// of the file has nothing before it to separate from, so the first
// chunk's header begins at byte 0 directly rather than at byte 24.
// This is the one place the "including offset 0" wording in the data
// model is narrowed — see DESIGN.md for the worked-example
// cross-check that drove the decision.
func hasBlockHeaderAt(pos int64) bool {
	return pos != 0 && IsBlockBoundary(pos)
}

// advancePastOverhead walks pos forward by skipping BlockHeaderSize
// bytes of overhead for every block boundary landed on, without
// consuming any of the caller's content bytes. It is the shared
// primitive behind [ChunkEnd] and [DistanceWithoutOverhead]: both are
// defined by simulating the physical byte stream rather than a closed
// arithmetic form, because a block header's own overhead can itself
// push the walk onto the next boundary.
func advancePastOverhead(pos int64) int64 {
	for hasBlockHeaderAt(pos) {
		pos += BlockHeaderSize
	}
	return pos
}

// ChunkEnd returns the file offset immediately following a chunk that
// starts at chunkStart and whose header-plus-payload length (40 +
// data_size) is chunkBytes of logical content. It accounts for the
// 24-byte BlockHeader occupying every block boundary the chunk's
// extent touches, including one at chunkStart itself if chunkStart is
// a block boundary (a chunk may legally start exactly at a boundary;
// the BlockHeader there precedes the chunk's first byte and is not
// part of chunkBytes). A block boundary exactly at the chunk's end is
// not counted: its BlockHeader precedes the following chunk.
func ChunkEnd(chunkStart int64, chunkBytes int64) int64 {
	pos := advancePastOverhead(chunkStart)
	remaining := chunkBytes
	for remaining > 0 {
		avail := RemainingInBlock(pos)
		take := avail
		if take > remaining {
			take = remaining
		}
		pos += take
		remaining -= take
		if remaining > 0 {
			pos = advancePastOverhead(pos)
		}
	}
	return pos
}

// DistanceWithoutOverhead returns the number of non-BlockHeader
// content bytes in the half-open physical byte range [start, end) —
// i.e. the number of bytes a reader would actually deliver to a
// caller while walking from start to end, with BlockHeader bytes
// excluded.
func DistanceWithoutOverhead(start, end int64) int64 {
	if end <= start {
		return 0
	}
	pos := advancePastOverhead(start)
	var content int64
	for pos < end {
		avail := RemainingInBlock(pos)
		step := avail
		if pos+step > end {
			step = end - pos
		}
		pos += step
		content += step
		if pos < end {
			pos = advancePastOverhead(pos)
		}
	}
	return content
}
