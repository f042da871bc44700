// Package dstpath reproduces the source tree under a destination root,
// tracking a path buffer by depth transitions and creating directories on
// demand as the traversal descends.
package dstpath

import (
	"os"
	"path/filepath"

	"github.com/parcelfs/parcel/pkg/traversal"
)

// MkdirNotifier is called when directory creation fails for an entry; it
// does not abort traversal.
type MkdirNotifier func(path string, err error)

// Builder mirrors a source tree under a destination root by maintaining a
// path buffer sized to the current traversal depth.
type Builder struct {
	root         string
	buf          []string
	currentDepth int
	onMkdirErr   MkdirNotifier
}

// New creates a Builder rooted at destRoot.
func New(destRoot string, onMkdirErr MkdirNotifier) *Builder {
	return &Builder{root: destRoot, onMkdirErr: onMkdirErr}
}

// Build produces the destination path for the entry, updates the internal
// path buffer per the depth-transition rule, and (for directory entries)
// eagerly creates the directory.
func (b *Builder) Build(e *traversal.Entry) string {
	switch {
	case e.Depth == 0:
		b.buf = []string{e.Name}
	case e.Depth > b.currentDepth:
		b.buf = append(b.buf, e.Name)
	case e.Depth == b.currentDepth:
		b.buf = append(b.buf[:len(b.buf)-1], e.Name)
	default:
		pop := b.currentDepth - e.Depth + 1
		if pop > len(b.buf) {
			pop = len(b.buf)
		}
		b.buf = append(b.buf[:len(b.buf)-pop], e.Name)
	}
	b.currentDepth = e.Depth

	dst := filepath.Join(append([]string{b.root}, b.buf...)...)
	if e.IsDir {
		if err := os.MkdirAll(dst, 0o755); err != nil && b.onMkdirErr != nil {
			b.onMkdirErr(dst, err)
		}
	}
	return dst
}
