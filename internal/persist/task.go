package persist

import (
	"context"
	"sync/atomic"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Task is the handle for an asynchronous facade operation. Cancelling a
// task that has not started prevents it from running; cancelling one in
// flight lets the backend call finish but discards its outcome.
type Task struct {
	done      chan struct{}
	err       error
	cancelled atomic.Bool
}

func runTask(fn func() error) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		if t.cancelled.Load() {
			t.err = types.ErrCancelled
			return
		}
		err := fn()
		if t.cancelled.Load() {
			t.err = types.ErrCancelled
			return
		}
		t.err = err
	}()
	return t
}

// Cancel requests cooperative cancellation.
func (t *Task) Cancel() { t.cancelled.Store(true) }

// Wait blocks until the task resolves and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// WaitContext blocks until the task resolves or ctx expires.
func (t *Task) WaitContext(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return types.ErrCancelled
	}
}

// Done reports whether the task has resolved.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
