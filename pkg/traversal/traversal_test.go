package traversal

import (
	"os"
	"path/filepath"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirInfoMonoidLaws(t *testing.T) {
	identity := DirInfo{}

	assoc := func(a, b, c DirInfo) bool {
		left := a.Add(b).Add(c)
		right := a.Add(b.Add(c))
		return left == right
	}
	require.NoError(t, quick.Check(assoc, nil))

	commute := func(a, b DirInfo) bool {
		return a.Add(b) == b.Add(a)
	}
	require.NoError(t, quick.Check(commute, nil))

	identityLaw := func(a DirInfo) bool {
		return a.Add(identity) == a
	}
	require.NoError(t, quick.Check(identityLaw, nil))
}

func TestClampAddDoesNotOverflow(t *testing.T) {
	max := ^uint64(0)
	assert.Equal(t, max, clampAdd(max, 1))
	assert.Equal(t, max, clampAdd(max-1, 5))
}

func TestHiddenFileSkip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "config"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "visible.txt"), []byte("hi"), 0o644))

	w := New(root)
	defer w.Close()

	var names []string
	for {
		e := w.GetNext()
		if e == nil {
			break
		}
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "visible.txt")
	assert.NotContains(t, names, ".git")
	assert.NotContains(t, names, "config")
}

func TestIsCompleteAfterAccountingAndIteration(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644))

	w := New(root)
	defer w.Close()
	for w.GetNext() != nil {
	}

	assert.Eventually(t, w.IsComplete, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusDone, w.Status().State())
	assert.Equal(t, uint64(1), w.Status().Info().ItemsCount)
}

func TestDoneChannelClosesOnTerminalState(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644))

	w := New(root)
	defer w.Close()

	select {
	case <-w.Status().Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close once accounting finished")
	}
	assert.Equal(t, StatusDone, w.Status().State())

	// Calling Done() again, after the state is already terminal, must
	// return an already-closed channel rather than blocking.
	select {
	case <-w.Status().Done():
	default:
		t.Fatal("Done() called post-terminal should be immediately closed")
	}
}
