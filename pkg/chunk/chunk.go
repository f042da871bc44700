// Package chunk defines the fixed-size buffered chunk and the Part model:
// an offset range within a source file paired with a destination writer.
package chunk

import "github.com/parcelfs/parcel/pkg/header"

// MinSize is the smallest chunk size, and by extension the smallest part
// size (MIN_PART_SIZE = MIN_CHUNK_SIZE).
const MinSize = 8 * 1024

// MinSplitSize is the smallest file size eligible for splitting
// (2 x MIN_PART_SIZE).
const MinSplitSize = 2 * MinSize

// MaxChunks is the per-part bound on buffered in-flight chunks. The
// splitter's part pump does not use it: it reads one chunk, writes it, and
// only then reads the next, so reads and writes never overlap.
const MaxChunks = 3

// Chunk is a byte range read from the source plus its payload. Bytes must
// equal end-start, except for the first chunk of part 0, which additionally
// carries the 10-byte header prefix ahead of its payload.
type Chunk struct {
	Start uint64
	End   uint64
	Bytes []byte
}

// PartingInfo describes how a file has been divided for a split transfer.
type PartingInfo struct {
	PartSize  uint64
	PartCount uint16
}

// ComputePartingInfo derives PartingInfo from a file size and the
// performance-dependent maximum part count:
// part_count = ceil(size / MIN_PART_SIZE) clamped to maxParts; part_size is
// MIN_PART_SIZE unless the clamp triggered, in which case it is
// size / part_count rounded up.
func ComputePartingInfo(size int64, maxParts int) (PartingInfo, error) {
	if size <= 0 {
		return PartingInfo{}, nil
	}
	count := (size + MinSize - 1) / MinSize
	clamped := false
	if int64(maxParts) > 0 && count > int64(maxParts) {
		count = int64(maxParts)
		clamped = true
	}
	if count > 65535 {
		return PartingInfo{}, errTooManyParts
	}

	partSize := uint64(MinSize)
	if clamped {
		partSize = uint64(size) / uint64(count)
		if uint64(size)%uint64(count) != 0 {
			partSize++
		}
	}
	return PartingInfo{PartSize: partSize, PartCount: uint16(count)}, nil
}

var errTooManyParts = partCountOverflow{}

type partCountOverflow struct{}

func (partCountOverflow) Error() string {
	return "part count exceeds the 16-bit header field (max 65535)"
}

// Part is a single contiguous byte range of the source file destined for
// one part file. StartOffset <= NextOffset <= EndOffset; the part is
// complete iff NextOffset == EndOffset.
type Part struct {
	Index       int
	Header      *header.Header // set only for part 0
	Destination string
	StartOffset uint64
	NextOffset  uint64
	EndOffset   uint64
}

// Complete reports whether every byte of the part's range has been
// consumed.
func (p *Part) Complete() bool {
	return p.NextOffset == p.EndOffset
}

// Advance moves NextOffset forward by n bytes, never past EndOffset.
func (p *Part) Advance(n uint64) {
	p.NextOffset += n
	if p.NextOffset > p.EndOffset {
		p.NextOffset = p.EndOffset
	}
}
