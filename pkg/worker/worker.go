// Package worker implements a single in-flight transfer unit and its
// bidirectional "marco/polo" control channel: the manager holds the control
// side, the task races receiving an abort against the transfer future.
package worker

import (
	"context"

	"github.com/parcelfs/parcel/pkg/errno"
)

// WorkAction is a control-channel message sent from manager to task.
type WorkAction int

const (
	Abort WorkAction = iota
)

// channelCapacity is the bidirectional channel's bounded slot count.
const channelCapacity = 3

// Control is the manager-held half of the marco/polo channel.
type Control struct {
	actions chan WorkAction
}

// Task is the worker-held half.
type Task struct {
	actions <-chan WorkAction
}

// NewChannel creates a bound control/task pair.
func NewChannel() (*Control, *Task) {
	ch := make(chan WorkAction, channelCapacity)
	return &Control{actions: ch}, &Task{actions: ch}
}

// SendAbort delivers an Abort message, dropping it silently if the channel
// is full (the task is expected to check frequently).
func (c *Control) SendAbort() {
	select {
	case c.actions <- Abort:
	default:
	}
}

// Fn is the unit of work a Worker runs: a Copier or Splitter invocation
// that respects ctx cancellation.
type Fn func(ctx context.Context) *errno.PropErr

// Worker owns one in-flight transfer task and the task side of its
// control channel.
type Worker struct {
	ID      int
	task    *Task
	cancel  context.CancelFunc
	done    chan struct{}
	result  *errno.PropErr
}

// Run spawns fn in its own goroutine, racing the task's control channel
// against fn's completion. On Abort receipt the task's context is
// cancelled promptly; onDone is invoked exactly once, with the worker's ID
// and any resulting error, mirroring worker_done(id) on the external
// interface.
func Run(id int, task *Task, fn Fn, onDone func(id int, err *errno.PropErr)) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{ID: id, task: task, cancel: cancel, done: make(chan struct{})}

	resultCh := make(chan *errno.PropErr, 1)
	go func() {
		resultCh <- fn(ctx)
	}()

	go func() {
		defer close(w.done)
		select {
		case <-task.actions:
			cancel()
			w.result = <-resultCh
		case w.result = <-resultCh:
		}
		if onDone != nil {
			onDone(id, w.result)
		}
	}()

	return w
}

// Wait blocks until the worker's task has finished.
func (w *Worker) Wait() *errno.PropErr {
	<-w.done
	return w.result
}
