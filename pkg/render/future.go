package render

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Future is a value computed on another goroutine. Expressions suspend on a
// Future with await(...); the resolver awaits it and renders the result.
type Future struct {
	done chan struct{}
	v    any
	err  error
}

// Go starts fn on a new goroutine and returns its Future. A panic in fn
// becomes the Future's error.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
			}
		}()
		f.v, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a completed Future holding v.
func Resolved(v any) *Future {
	f := &Future{done: make(chan struct{}), v: v}
	close(f.done)
	return f
}

// Failed returns a completed Future holding err.
func Failed(err error) *Future {
	f := &Future{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Await blocks until f completes or ctx is done.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.v, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed when f completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}
