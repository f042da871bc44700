// Package traversal implements the lazy, cancellable pre-order directory
// walk and the background subtree accounting task that runs alongside it.
package traversal

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/parcelfs/parcel/pkg/errno"
)

// Entry is a single yielded traversal result: a valid directory entry or a
// structured walk error.
type Entry struct {
	RelPath string
	Depth   int
	Name    string
	IsDir   bool
	Path    string
	Err     *errno.PropErr
}

// DirInfo is the additive commutative monoid (items_count, total_size)
// accumulated by the background accounting task. Identity is the zero
// value; Add clamps at the representable maximum instead of overflowing.
type DirInfo struct {
	ItemsCount uint64
	TotalSize  uint64
}

// Add combines two DirInfo values component-wise, clamping each component
// at math.MaxUint64 instead of wrapping.
func (d DirInfo) Add(other DirInfo) DirInfo {
	return DirInfo{
		ItemsCount: clampAdd(d.ItemsCount, other.ItemsCount),
		TotalSize:  clampAdd(d.TotalSize, other.TotalSize),
	}
}

func clampAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// DirStatusState is the DirStatus state machine's current phase.
type DirStatusState int

const (
	StatusNone DirStatusState = iota
	StatusCalculating
	StatusDone
	StatusAborted
	StatusError
)

// DirStatus tracks the background accounting task's lifecycle: None before
// it starts, Calculating while it runs (cancellable), then one of the
// terminal states Done/Aborted/Error.
type DirStatus struct {
	mu     sync.Mutex
	state  DirStatusState
	info   DirInfo
	cancel context.CancelFunc
	err    error
	done   chan struct{}
}

// State returns the current phase.
func (s *DirStatus) State() DirStatusState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Info returns the accumulated DirInfo once Done.
func (s *DirStatus) Info() DirInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Done returns a channel that closes once the background accounting task
// reaches a terminal state (Done, Aborted, or Error).
func (s *DirStatus) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
		if s.state == StatusDone || s.state == StatusAborted || s.state == StatusError {
			close(s.done)
		}
	}
	return s.done
}

// closeDoneLocked closes the done channel if it exists and is not already
// closed. Callers must hold mu.
func (s *DirStatus) closeDoneLocked() {
	if s.done != nil {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	}
}

func (s *DirStatus) start(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StatusCalculating
	s.cancel = cancel
}

func (s *DirStatus) finishDone(info DirInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatusCalculating {
		s.state = StatusDone
		s.info = info
	}
	s.closeDoneLocked()
}

func (s *DirStatus) finishAborted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatusCalculating {
		s.state = StatusAborted
	}
	s.closeDoneLocked()
}

func (s *DirStatus) finishError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatusCalculating {
		s.state = StatusError
		s.err = err
	}
	s.closeDoneLocked()
}

// Cancel stops the background accounting task if it is still running.
func (s *DirStatus) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// isHidden reports the hidden-file policy: any entry whose base name
// begins with "." is skipped together with its subtree.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Walker is a lazy pre-order iterator over a directory tree with a
// concurrently running background accounting task.
type Walker struct {
	root    string
	entries chan Entry
	status  *DirStatus
	ctx     context.Context
	cancel  context.CancelFunc
	done    bool
	doneMu  sync.Mutex
}

// New starts a traversal rooted at root: the walk starts immediately in its
// own goroutine and runs at most 32 buffered entries ahead of GetNext, and
// the background accounting task starts immediately in another goroutine.
func New(root string) *Walker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Walker{
		root:    root,
		entries: make(chan Entry, 32),
		status:  &DirStatus{},
		ctx:     ctx,
		cancel:  cancel,
	}
	go w.walkEntries()
	go w.runAccounting()
	return w
}

func (w *Walker) walkEntries() {
	defer close(w.entries)
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-w.ctx.Done():
			return filepath.SkipAll
		default:
		}
		if path == w.root {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		name := filepath.Base(path)
		if isHidden(name) {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err != nil {
			pe := mapWalkError(err)
			w.emit(Entry{RelPath: rel, Path: path, Err: pe})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		depth := 0
		if rel != "." {
			depth = len(strings.Split(filepath.ToSlash(rel), "/"))
		}
		w.emit(Entry{RelPath: rel, Depth: depth, Name: name, IsDir: d.IsDir(), Path: path})
		return nil
	})
}

func (w *Walker) emit(e Entry) {
	select {
	case w.entries <- e:
	case <-w.ctx.Done():
	}
}

// mapWalkError maps the underlying I/O error to PropErr, with loop-ancestor
// detection taking priority over the generic I/O-kind mapping.
func mapWalkError(err error) *errno.PropErr {
	if strings.Contains(err.Error(), "too many levels of symbolic links") || strings.Contains(err.Error(), "loop") {
		return errno.New(errno.Loop, err)
	}
	return errno.FromIOError(err)
}

func (w *Walker) runAccounting() {
	cctx, cancel := context.WithCancel(w.ctx)
	w.status.start(cancel)

	var acc DirInfo
	walkErr := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-cctx.Done():
			return filepath.SkipAll
		default:
		}
		if path == w.root {
			return nil
		}
		name := filepath.Base(path)
		if isHidden(name) {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err != nil {
			return nil
		}
		var size uint64
		if !d.IsDir() {
			if info, ierr := d.Info(); ierr == nil {
				size = uint64(info.Size())
			}
		}
		acc = acc.Add(DirInfo{ItemsCount: 1, TotalSize: size})
		return nil
	})

	select {
	case <-cctx.Done():
		w.status.finishAborted()
		return
	default:
	}
	if walkErr != nil {
		w.status.finishError(walkErr)
		return
	}
	w.status.finishDone(acc)
}

// GetNext advances the iteration by one, returning nil when the traversal
// is exhausted.
func (w *Walker) GetNext() *Entry {
	e, ok := <-w.entries
	if !ok {
		w.doneMu.Lock()
		w.done = true
		w.doneMu.Unlock()
		return nil
	}
	return &e
}

// Status exposes the background accounting task's DirStatus for
// join-on-demand.
func (w *Walker) Status() *DirStatus {
	return w.status
}

// IsComplete is true iff accounting finished and iteration yielded every
// entry.
func (w *Walker) IsComplete() bool {
	w.doneMu.Lock()
	iterDone := w.done
	w.doneMu.Unlock()
	if !iterDone {
		return false
	}
	switch w.status.State() {
	case StatusDone, StatusAborted, StatusError:
		return true
	default:
		return false
	}
}

// Close cancels the background accounting task and stops iteration. It is
// the Go equivalent of Drop cancelling the accounting task.
func (w *Walker) Close() {
	w.cancel()
	w.status.Cancel()
}
