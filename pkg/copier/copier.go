// Package copier implements the simple whole-file streaming copy used as
// the fast path for every file that is not split: splitting disabled, the
// file below the split threshold, or no compression selected. It copies
// bytes as-is and never compresses.
package copier

import (
	"io"
	"os"

	"github.com/parcelfs/parcel/pkg/errno"
	"github.com/parcelfs/parcel/pkg/progress"
)

const bufSize = 256 * 1024

// Copy streams src to dst, reporting processed bytes to tracker, and
// returns a structured error carrying both paths on failure.
func Copy(src, dst string, tracker *progress.Tracker) *errno.PropErr {
	srcFile, err := os.Open(src)
	if err != nil {
		return errno.New(errno.Read, err).WithPath(src, dst)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return errno.New(errno.EntityCreation, err).WithPath(src, dst)
	}
	defer dstFile.Close()

	var reader io.Reader = srcFile
	if tracker != nil {
		reader = progress.NewReader(srcFile, tracker)
	}

	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(dstFile, reader, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return errno.New(errno.CorruptedFile, err).WithPath(src, dst)
		}
		return errno.New(errno.Copy, err).WithPath(src, dst)
	}
	return nil
}
