package database

import (
	"context"
	"sync"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Future is a one-shot handle for an asynchronous statement. The result is
// delivered exactly once; every waiter observes the same value.
type Future struct {
	done   chan struct{}
	once   sync.Once
	result types.QueryResult
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(r types.QueryResult) {
	f.once.Do(func() {
		f.result = r
		close(f.done)
	})
}

// Wait blocks until the statement resolves.
func (f *Future) Wait() types.QueryResult {
	<-f.done
	return f.result
}

// WaitContext blocks until the statement resolves or ctx expires. On
// expiry the underlying statement keeps running; its result is discarded.
func (f *Future) WaitContext(ctx context.Context) (types.QueryResult, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return types.QueryResult{}, types.ErrCancelled
	}
}

// Done reports whether the result is available without blocking.
func (f *Future) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
