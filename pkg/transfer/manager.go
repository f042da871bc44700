// Package transfer implements the TransferManager: it owns the traversal,
// the destination builder, the progress tracker, and the bounded worker
// pool, and drives scheduling from the first entry to completion.
package transfer

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/parcelfs/parcel/pkg/algorithm"
	"github.com/parcelfs/parcel/pkg/chunk"
	"github.com/parcelfs/parcel/pkg/copier"
	"github.com/parcelfs/parcel/pkg/dstpath"
	"github.com/parcelfs/parcel/pkg/errno"
	"github.com/parcelfs/parcel/pkg/logging"
	"github.com/parcelfs/parcel/pkg/notify"
	"github.com/parcelfs/parcel/pkg/perf"
	"github.com/parcelfs/parcel/pkg/progress"
	"github.com/parcelfs/parcel/pkg/splitter"
	"github.com/parcelfs/parcel/pkg/traversal"
	"github.com/parcelfs/parcel/pkg/worker"
)

// State is a coarser transfer status than IsComplete, surfaced for host
// UIs that want it.
type State int

const (
	StatePaused State = iota
	StatePausing
	StateInProgress
	StateResuming
	StateFailed
	StateCompleted
)

// Event is emitted to the host over Events(): progress/processed/log/
// worker-done, mirroring the external interface.
type Event struct {
	Kind      string // "progress" | "processed" | "log" | "worker-done"
	Percent   int
	Processed uint64
	Message   string
	WorkerID  int
}

// Manager owns the traversal, destination builder, worker pool, progress
// tracker and notification queue for a single src -> dst transfer.
type Manager struct {
	src, dst string
	settings *perf.Settings
	logger   *logging.Logger

	walker   *traversal.Walker
	builder  *dstpath.Builder
	tracker  *progress.Tracker
	queue    *notify.Queue

	mu         sync.Mutex
	state      State
	inFlight   map[int]*worker.Worker
	controls   map[int]*worker.Control
	nextID     int
	traversalDone bool

	events chan Event
}

// New normalizes dst, and constructs the destination builder and the
// no-total progress tracker for the src -> dst pair. It does not create the
// traversal; Start does.
func New(src, dst string, settings *perf.Settings, logger *logging.Logger) *Manager {
	absDst, err := filepath.Abs(dst)
	if err != nil {
		absDst = dst
	}
	m := &Manager{
		src:      src,
		dst:      absDst,
		settings: settings,
		logger:   logger.WithComponent("transfer"),
		queue:    notify.New(),
		inFlight: make(map[int]*worker.Worker),
		controls: make(map[int]*worker.Control),
		events:   make(chan Event, 64),
		state:    StatePaused,
	}
	m.builder = dstpath.New(absDst, func(path string, err error) {
		m.queue.Push(notify.Notification{
			Title: "directory creation failed",
			Body:  fmt.Sprintf("%s: %v", path, err),
			Kind:  notify.Warning,
		}, "mkdir:"+path)
	})
	m.tracker = progress.NewIndeterminate(func(pct int) {
		m.emit(Event{Kind: "progress", Percent: pct})
	})
	return m
}

// Events exposes the in-process event stream.
func (m *Manager) Events() <-chan Event { return m.events }

func (m *Manager) emit(e Event) {
	select {
	case m.events <- e:
	default:
	}
}

// Start begins traversal and spawns up to WorkerThreads() workers,
// repeatedly pulling the next entry until either the traversal is
// exhausted or the bound is reached.
func (m *Manager) Start() {
	m.mu.Lock()
	m.walker = traversal.New(m.src)
	m.state = StateInProgress
	m.mu.Unlock()

	go m.awaitDirStatus()

	for i := 0; i < m.settings.WorkerThreads(); i++ {
		if !m.spawnNext() {
			break
		}
	}
}

// awaitDirStatus blocks until the background accounting task finishes and,
// once it lands on StatusDone, installs the real total on the progress
// tracker, transitioning it from Indeterminate to Deterministic.
func (m *Manager) awaitDirStatus() {
	status := m.walker.Status()
	<-status.Done()
	if status.State() != traversal.StatusDone {
		return
	}
	m.tracker.SetTotal(int64(status.Info().TotalSize))
}

// spawnNext pulls entries until one yields a spawnable worker or
// the traversal is exhausted.
func (m *Manager) spawnNext() bool {
	for {
		e := m.walker.GetNext()
		if e == nil {
			m.mu.Lock()
			m.traversalDone = true
			m.mu.Unlock()
			return false
		}
		if e.Err != nil {
			m.queue.Push(notify.Notification{
				Title: "traversal error",
				Body:  e.Err.Error(),
				Kind:  notify.Error,
			}, "walk:"+e.RelPath)
			continue
		}

		dst := m.builder.Build(e)
		if e.IsDir {
			continue
		}
		m.dispatchFile(e, dst)
		return true
	}
}

func (m *Manager) dispatchFile(e *traversal.Entry, dst string) {
	size := fileSize(e.Path)
	mimeType := mime.TypeByExtension(filepath.Ext(e.Path))
	ext := extNoDot(e.Path)
	alg := algorithm.Select(size, mimeType, ext, m.settings.Performance)
	if m.settings.CompressionOverride != nil {
		if override, ok := algorithm.Parse(*m.settings.CompressionOverride); ok {
			alg = override
		}
	}

	splitEligible := m.settings.SplitEnabled && size >= chunk.MinSplitSize && alg.IsEnabled()

	control, task := worker.NewChannel()

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.controls[id] = control
	m.mu.Unlock()

	fn := func(ctx context.Context) *errno.PropErr {
		if m.resolveConflict(e.Path, dst) == notify.Skip {
			return nil
		}
		if splitEligible {
			_, perr := splitter.Split(ctx, e.Path, dst, size, alg, m.settings, m.tracker, func(fp splitter.FailedPart) {
				m.queue.Push(notify.Notification{
					Title: "part failed",
					Body:  fmt.Sprintf("%s: %v", fp.Src, fp.Err),
					Kind:  notify.Error,
				}, "part:"+fp.Src)
			})
			return perr
		}
		return copier.Copy(e.Path, dst, m.tracker)
	}

	w := worker.Run(id, task, fn, func(wid int, err *errno.PropErr) {
		if err != nil {
			m.queue.Push(notify.Notification{
				Title: "transfer failed",
				Body:  err.Error(),
				Kind:  notify.Error,
			}, "xfer:"+e.Path)
		}
		m.emit(Event{Kind: "worker-done", WorkerID: wid})
		m.completedWorker(wid)
	})

	m.mu.Lock()
	m.inFlight[id] = w
	m.mu.Unlock()
}

// resolveConflict checks whether dst already exists and, if so, raises a
// decision entry and blocks until it is resolved (either immediately, via
// a prior "All" default, or after the host calls Decide). A destination
// with a differing size is reported as Modified; an identical size is
// reported as Duplicate. Files with no existing destination proceed
// without a decision.
func (m *Manager) resolveConflict(src, dst string) notify.Decision {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return notify.Replace
	}

	kind := notify.Modified
	if srcInfo, serr := os.Stat(src); serr == nil && srcInfo.Size() == dstInfo.Size() {
		kind = notify.Duplicate
	}

	entry, waiting := m.queue.SetPending(kind, dst)
	if !waiting {
		return entry.Decision
	}

	m.queue.Push(notify.Notification{
		Title:  "destination exists",
		Body:   dst,
		Kind:   notify.Warning,
		Action: notify.ActionDuplicate,
	}, "")
	return m.queue.Wait(entry)
}

// completedWorker is called when a worker reports done; it immediately
// attempts to spawn a replacement by pulling the next entry.
func (m *Manager) completedWorker(id int) {
	m.mu.Lock()
	delete(m.inFlight, id)
	delete(m.controls, id)
	m.mu.Unlock()

	if !m.isTraversalDone() {
		m.spawnNext()
	}

	if m.IsComplete() {
		m.mu.Lock()
		m.state = StateCompleted
		m.mu.Unlock()
	}
}

func (m *Manager) isTraversalDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.traversalDone
}

// IsComplete is true iff the traversal is complete and the in-flight
// worker set is empty.
func (m *Manager) IsComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.traversalDone && len(m.inFlight) == 0
}

// IsDirStatusCalculated reports whether the background accounting task has
// reached a terminal state.
func (m *Manager) IsDirStatusCalculated() bool {
	if m.walker == nil {
		return false
	}
	switch m.walker.Status().State() {
	case traversal.StatusDone, traversal.StatusAborted, traversal.StatusError:
		return true
	default:
		return false
	}
}

// UpdateProgress is the host-side injection point for progress, used when
// a sub-writer cannot reach the manager directly.
func (m *Manager) UpdateProgress(processed uint64) {
	m.tracker.Update(int64(processed))
	m.emit(Event{Kind: "processed", Processed: processed})
}

// Abort sends an Abort message to every in-flight worker's control
// channel.
func (m *Manager) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.controls {
		c.SendAbort()
	}
	m.state = StatePausing
}

// State returns the manager's coarse transfer state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Notifications exposes the queue for a host to drain.
func (m *Manager) Notifications() *notify.Queue { return m.queue }

func extNoDot(path string) string {
	e := filepath.Ext(path)
	if len(e) > 0 && e[0] == '.' {
		return e[1:]
	}
	return e
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
