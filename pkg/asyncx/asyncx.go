// Package asyncx holds the few concurrency helpers the service layer leans
// on: a minimal future, a fire-and-forget launcher, and a hard timeout
// wrapper.
//
// WithTimeout is how the turn pipeline bounds the narrator's provider call.
// Do carries non-critical background work such as budget notifications and
// the scheduled snapshot worker.
package asyncx

import (
	"context"
	"sync"
	"time"
)

// Future is a value being computed in another goroutine. Create one with
// Run, collect it with Await.
type Future[T any] struct {
	ch  chan result[T]
	res *result[T]
	mu  sync.Mutex
}

type result[T any] struct {
	value T
	err   error
}

// Run starts fn in a goroutine immediately and returns a Future for its
// result.
func Run[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{ch: make(chan result[T], 1)}
	go func() {
		v, err := fn()
		f.ch <- result[T]{value: v, err: err}
	}()
	return f
}

// Await blocks until the result is ready. Later calls return the cached
// result without blocking.
func (f *Future[T]) Await() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.res == nil {
		r := <-f.ch
		f.res = &r
	}
	return f.res.value, f.res.err
}

// Do launches fn in a goroutine and forgets about it.
func Do(fn func()) {
	go fn()
}

// WithTimeout runs fn under a deadline of d and returns ctx.Err() when the
// deadline passes first. The goroutine running fn is not killed on timeout;
// fn has to honor its context to stop early.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	f := Run(func() (T, error) {
		return fn(ctx)
	})

	select {
	case r := <-f.ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
