package pacing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// PoolMetrics is a snapshot of the pool counters. Active and Waiting are
// gauges; the rest only grow.
type PoolMetrics struct {
	Active    int64 `json:"active"`
	Waiting   int64 `json:"waiting"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Failed    int64 `json:"failed"`
	Panics    int64 `json:"panics"`
}

// ErrPoolShutdown is returned when work is submitted to a shut-down pool.
var ErrPoolShutdown = errors.New("worker pool is shut down")

// Task is one unit of pool work. Its context ends when the pool shuts down.
type Task func(ctx context.Context) error

// WorkerPool bounds how many animations play at once. Submitters block for
// a free slot, so a burst of requests queues instead of spawning goroutines
// without limit.
type WorkerPool struct {
	slots chan struct{}
	base  context.Context
	stop  context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	active, waiting                      atomic.Int64
	completed, cancelled, failed, panics atomic.Int64
}

// NewWorkerPool creates a pool running at most size tasks. Sizes below one
// become one.
func NewWorkerPool(size int) *WorkerPool {
	base, stop := context.WithCancel(context.Background())
	return &WorkerPool{
		slots: make(chan struct{}, max(size, 1)),
		base:  base,
		stop:  stop,
	}
}

// Size returns the maximum number of concurrent tasks.
func (p *WorkerPool) Size() int {
	return cap(p.slots)
}

// Submit starts fn once a slot is free. ctx bounds only the wait for the
// slot. A task returning a context error counts as cancelled, not failed.
func (p *WorkerPool) Submit(ctx context.Context, fn Task) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return ErrPoolShutdown
	}
	p.wg.Add(1)
	p.mu.Unlock()

	p.active.Add(1)
	go p.run(fn)
	return nil
}

func (p *WorkerPool) acquire(ctx context.Context) error {
	if p.base.Err() != nil {
		return ErrPoolShutdown
	}
	p.waiting.Add(1)
	defer p.waiting.Add(-1)

	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.base.Done():
		return ErrPoolShutdown
	}
}

func (p *WorkerPool) run(fn Task) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.failed.Add(1)
		}
		p.active.Add(-1)
		<-p.slots
		p.wg.Done()
	}()

	err := fn(p.base)
	switch {
	case err == nil:
		p.completed.Add(1)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		p.cancelled.Add(1)
	default:
		p.failed.Add(1)
	}
}

// Wait blocks until every submitted task has returned.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// Shutdown refuses new work, cancels the context of running tasks and waits
// for them to return. Calling it again is a no-op.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stop()
	p.mu.Unlock()

	p.wg.Wait()
}

// Metrics returns a snapshot of the pool counters.
func (p *WorkerPool) Metrics() PoolMetrics {
	return PoolMetrics{
		Active:    p.active.Load(),
		Waiting:   p.waiting.Load(),
		Completed: p.completed.Load(),
		Cancelled: p.cancelled.Load(),
		Failed:    p.failed.Load(),
		Panics:    p.panics.Load(),
	}
}
