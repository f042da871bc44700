package dstpath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parcelfs/parcel/pkg/traversal"
)

func TestS9TraversalAndBuilder(t *testing.T) {
	destRoot := t.TempDir()
	b := New(destRoot, nil)

	entries := []*traversal.Entry{
		{RelPath: "a", Depth: 1, Name: "a", IsDir: true},
		{RelPath: "a/b.txt", Depth: 2, Name: "b.txt", IsDir: false},
		{RelPath: "a/c", Depth: 2, Name: "c", IsDir: true},
		{RelPath: "a/c/d.txt", Depth: 3, Name: "d.txt", IsDir: false},
	}

	var dirs, files []string
	for _, e := range entries {
		dst := b.Build(e)
		if e.IsDir {
			dirs = append(dirs, dst)
		} else {
			files = append(files, dst)
		}
	}

	assert.Equal(t, []string{destRoot + "/a", destRoot + "/a/c"}, dirs)
	assert.Equal(t, []string{destRoot + "/a/b.txt", destRoot + "/a/c/d.txt"}, files)
}
