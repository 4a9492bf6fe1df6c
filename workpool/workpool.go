// Package workpool provides bounded fork-join fan-out for data-parallel work
// whose units are independent and whose completion order does not matter.
package workpool

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Group is similar to errgroup.Group but cancels all goroutines on first error
// and bounds the number of goroutines running at once.
type Group struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// New returns a new Group running at most limit functions at a time, and an
// associated Context derived from ctx. A limit below 1 means one.
// The derived Context is canceled when the first function returns an error,
// or when Wait returns, whichever happens first.
func New(ctx context.Context, limit int) (*Group, context.Context) {
	if limit < 1 {
		limit = 1
	}

	ctx, cancel := context.WithCancelCause(ctx)

	return &Group{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(limit)),
	}, ctx
}

// Go calls f in a new goroutine once a slot is free. If the group has already
// failed, f is not started.
// The first call to return a non-nil error cancels the group's context.
func (g *Group) Go(f func(ctx context.Context) error) {
	if err := g.sem.Acquire(g.ctx, 1); err != nil {
		return
	}

	g.wg.Add(1)

	go func() {
		defer g.wg.Done()
		defer g.sem.Release(1)

		if err := f(g.ctx); err != nil {
			g.setErr(err)
		}
	}()
}

// Wait blocks until all function calls from the Go method have returned,
// then returns the first non-nil error (if any) from them.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel(nil)
	return g.err
}

func (g *Group) setErr(err error) {
	g.errOnce.Do(func() {
		g.err = err
		g.cancel(err)
	})
}

// Workers returns the default fan-out width.
func Workers() int {
	return runtime.GOMAXPROCS(0)
}

// Range is ForEach for work that cannot fail.
func Range(n, workers int, fn func(start, end int)) {
	_ = ForEach(n, workers, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ForEach splits [0, n) into at most workers contiguous ranges and calls fn
// once per range, concurrently. With one worker, or a single range, fn runs
// on the calling goroutine. The first error is returned.
func ForEach(n, workers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}

	workers = min(max(workers, 1), n)
	if workers == 1 {
		return fn(0, n)
	}

	step := (n + workers - 1) / workers

	group, _ := New(context.Background(), workers)
	for start := 0; start < n; start += step {
		end := min(start+step, n)
		group.Go(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return nil
			}
			return fn(start, end)
		})
	}

	return group.Wait()
}
