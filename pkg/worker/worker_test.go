package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelfs/parcel/pkg/errno"
)

func TestWorkerCompletesNaturally(t *testing.T) {
	control, task := NewChannel()
	_ = control

	doneCh := make(chan int, 1)
	w := Run(1, task, func(ctx context.Context) *errno.PropErr {
		return nil
	}, func(id int, err *errno.PropErr) {
		doneCh <- id
	})

	assert.Nil(t, w.Wait())
	select {
	case id := <-doneCh:
		assert.Equal(t, 1, id)
	case <-time.After(time.Second):
		t.Fatal("onDone was not called")
	}
}

func TestWorkerAbortCancelsContext(t *testing.T) {
	control, task := NewChannel()

	started := make(chan struct{})
	w := Run(2, task, func(ctx context.Context) *errno.PropErr {
		close(started)
		<-ctx.Done()
		return errno.New(errno.Interrupted, errors.New("aborted"))
	}, nil)

	<-started
	control.SendAbort()

	err := w.Wait()
	require.NotNil(t, err)
	assert.Equal(t, errno.Interrupted, err.Kind)
}

func TestChannelCapacityBounded(t *testing.T) {
	control, _ := NewChannel()
	for i := 0; i < channelCapacity; i++ {
		control.SendAbort()
	}
	// one more send beyond capacity must not block (dropped silently)
	done := make(chan struct{})
	go func() {
		control.SendAbort()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendAbort blocked past channel capacity")
	}
}
