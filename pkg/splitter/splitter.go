// Package splitter partitions a file into parts and spawns one goroutine
// per part, all reading disjoint ranges from a single shared, mutex-guarded
// seekable source handle.
package splitter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/parcelfs/parcel/pkg/algorithm"
	"github.com/parcelfs/parcel/pkg/chunk"
	"github.com/parcelfs/parcel/pkg/codec"
	"github.com/parcelfs/parcel/pkg/errno"
	"github.com/parcelfs/parcel/pkg/header"
	"github.com/parcelfs/parcel/pkg/perf"
	"github.com/parcelfs/parcel/pkg/progress"
)

// sharedReader is the splitter's single seekable handle to the source
// file, protected by exclusive-access locking around seek+read so N
// part-tasks can serialize disjoint reads.
type sharedReader struct {
	mu sync.Mutex
	f  *os.File
}

// readAt seeks to offset and reads up to len(buf) bytes, releasing the
// lock before the caller does anything further with the bytes.
func (s *sharedReader) readAt(offset int64, buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	return s.f.Read(buf)
}

// PartResult is the outcome of one part-task.
type PartResult struct {
	Index       int
	Destination string
	Err         *errno.PropErr
	ReadPos     uint64 // last Tracker read offset reached, for diagnostics
	WritePos    uint64 // last Tracker write offset reached, for diagnostics
}

// FailedPart records a part-task error mid-transfer for a future retry
// driver; RetryCount caps at MaxRetryCount.
type FailedPart struct {
	Part         chunk.Part
	FailedOffset uint64
	Start        uint64
	End          uint64
	Src          string
	Err          error
	RetryCount   int
}

// MaxRetryCount bounds FailedPart.RetryCount.
const MaxRetryCount = 5

// CanRetry reports whether the failed part has retries remaining.
func (f *FailedPart) CanRetry() bool {
	return f.RetryCount < MaxRetryCount
}

// Split partitions src into PartingInfo-sized parts compressed with alg,
// writing each part to "<dst>.<ext><index>" and pumping chunks from the
// shared reader into each part's codec-wrapped destination. Only part 0's
// first chunk carries the 10-byte header. Split returns once every part
// completes, or as soon as ctx is cancelled, in which case every
// outstanding part-task is stopped and partial results are returned.
func Split(ctx context.Context, src, dstBase string, size int64, alg algorithm.Algorithm, settings *perf.Settings, tracker *progress.Tracker, onPartError func(FailedPart)) ([]PartResult, *errno.PropErr) {
	pi, err := chunk.ComputePartingInfo(size, settings.MaxParts())
	if err != nil {
		return nil, errno.New(errno.TooManyTasks, err).WithPath(src, dstBase)
	}

	f, oerr := os.Open(src)
	if oerr != nil {
		return nil, errno.New(errno.Read, oerr).WithPath(src, dstBase)
	}
	defer f.Close()
	reader := &sharedReader{f: f}

	partCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]PartResult, pi.PartCount)
	var wg sync.WaitGroup

	for p := 0; p < int(pi.PartCount); p++ {
		start := uint64(p) * pi.PartSize
		end := start + pi.PartSize
		if end > uint64(size) || p == int(pi.PartCount)-1 {
			end = uint64(size)
		}

		part := chunk.Part{
			Index:       p,
			Destination: fmt.Sprintf("%s.%s", dstBase, alg.PartedExt(p)),
			StartOffset: start,
			NextOffset:  start,
			EndOffset:   end,
		}
		if p == 0 {
			h := header.Header{PartSize: pi.PartSize, PartCount: pi.PartCount}
			part.Header = &h
		}

		wg.Add(1)
		go func(idx int, part chunk.Part) {
			defer wg.Done()
			res := runPart(partCtx, reader, part, alg, settings, tracker, onPartError, src)
			results[idx] = res
			if res.Err != nil {
				cancel()
			}
		}(p, part)
	}

	wg.Wait()

	select {
	case <-ctx.Done():
		return results, errno.New(errno.Interrupted, ctx.Err())
	default:
	}
	return results, nil
}

func runPart(ctx context.Context, reader *sharedReader, part chunk.Part, alg algorithm.Algorithm, settings *perf.Settings, tracker *progress.Tracker, onPartError func(FailedPart), src string) PartResult {
	dstFile, cerr := os.Create(part.Destination)
	if cerr != nil {
		return PartResult{Index: part.Index, Destination: part.Destination, Err: errno.New(errno.EntityCreation, cerr).WithPath(src, part.Destination)}
	}
	defer dstFile.Close()

	enc, eerr := codec.NewEncoder(alg, dstFile, settings.CompressionLevel())
	if eerr != nil {
		return PartResult{Index: part.Index, Destination: part.Destination, Err: errno.New(errno.Compress, eerr).WithPath(src, part.Destination)}
	}
	// Closing the encoder flushes the codec trailer; on an aborted part
	// that trailer must never reach the partial file, so the deferred
	// Close is skipped on the ctx.Done() path below.
	aborted := false
	defer func() {
		if !aborted {
			enc.Close()
		}
	}()

	offTracker := NewTracker(src, part.Destination).SetStart(part.StartOffset).SetEnd(part.EndOffset)

	buf := make([]byte, chunk.MinSize)
	first := true
	for !part.Complete() {
		select {
		case <-ctx.Done():
			aborted = true
			return PartResult{Index: part.Index, Destination: part.Destination, Err: errno.New(errno.Interrupted, ctx.Err()), ReadPos: offTracker.ReadPos(), WritePos: offTracker.WritePos()}
		default:
		}

		remaining := part.EndOffset - part.NextOffset
		want := uint64(len(buf))
		if remaining < want {
			want = remaining
		}
		n, rerr := reader.readAt(int64(part.NextOffset), buf[:want])
		if n > 0 {
			payload := buf[:n]
			if first && part.Header != nil {
				if _, werr := dstFile.Write(part.Header.Encode()); werr != nil {
					fp := FailedPart{Part: part, FailedOffset: part.NextOffset, Start: part.StartOffset, End: part.EndOffset, Src: src, Err: werr}
					if onPartError != nil {
						onPartError(fp)
					}
					return PartResult{Index: part.Index, Destination: part.Destination, Err: errno.New(errno.Write, werr).WithPath(src, part.Destination), ReadPos: offTracker.ReadPos(), WritePos: offTracker.WritePos()}
				}
			}
			first = false
			if _, werr := enc.Write(payload); werr != nil {
				fp := FailedPart{Part: part, FailedOffset: part.NextOffset, Start: part.StartOffset, End: part.EndOffset, Src: src, Err: werr}
				if onPartError != nil {
					onPartError(fp)
				}
				return PartResult{Index: part.Index, Destination: part.Destination, Err: errno.New(errno.Write, werr).WithPath(src, part.Destination), ReadPos: offTracker.ReadPos(), WritePos: offTracker.WritePos()}
			}
			part.Advance(uint64(n))
			offTracker.Update(part.NextOffset, part.NextOffset)
			if tracker != nil {
				tracker.Update(int64(n))
			}
		}
		if rerr != nil && rerr != io.EOF {
			fp := FailedPart{Part: part, FailedOffset: part.NextOffset, Start: part.StartOffset, End: part.EndOffset, Src: src, Err: rerr}
			if onPartError != nil {
				onPartError(fp)
			}
			return PartResult{Index: part.Index, Destination: part.Destination, Err: errno.FromIOError(rerr).WithPath(src, part.Destination), ReadPos: offTracker.ReadPos(), WritePos: offTracker.WritePos()}
		}
		if n == 0 && rerr == io.EOF {
			break
		}
	}
	return PartResult{Index: part.Index, Destination: part.Destination, ReadPos: offTracker.ReadPos(), WritePos: offTracker.WritePos()}
}
