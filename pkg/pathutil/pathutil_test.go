package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentCurrent(t *testing.T) {
	parent, current := ParentCurrent("/a/b/c.txt")
	assert.Equal(t, "/a/b", parent)
	assert.Equal(t, "c.txt", current)
}

func TestRelativeDepth(t *testing.T) {
	assert.Equal(t, 0, RelativeDepth("."))
	assert.Equal(t, 1, RelativeDepth("a"))
	assert.Equal(t, 3, RelativeDepth("a/b/c"))
}

func TestCopyNameAvoidsCollisions(t *testing.T) {
	taken := map[string]bool{
		"/dst/file (copy).txt": true,
	}
	name := CopyName("/dst/file.txt", func(p string) bool { return taken[p] })
	assert.Equal(t, "/dst/file (copy 2).txt", name)
}

func TestCopyNameNoCollision(t *testing.T) {
	name := CopyName("/dst/file.txt", func(string) bool { return false })
	assert.Equal(t, "/dst/file (copy).txt", name)
}
