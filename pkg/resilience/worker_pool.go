package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrWorkerPoolClosed = errors.New("worker pool is closed")

// WorkerPool runs jobs on a fixed number of goroutines. With one worker it
// serializes everything submitted to it.
type WorkerPool struct {
	jobs     chan func()
	workers  int
	inFlight atomic.Int32
	closed   bool
	mu       sync.RWMutex
	once     sync.Once
	wg       sync.WaitGroup
}

func NewWorkerPool(workers, queueSize int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}

	p := &WorkerPool{
		jobs:    make(chan func(), queueSize),
		workers: workers,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				if job != nil {
					p.inFlight.Add(1)
					job()
					p.inFlight.Add(-1)
				}
			}
		}()
	}

	return p
}

// Workers returns the number of goroutines serving the pool.
func (p *WorkerPool) Workers() int { return p.workers }

// InFlight returns the number of jobs currently executing.
func (p *WorkerPool) InFlight() int { return int(p.inFlight.Load()) }

func (p *WorkerPool) Submit(ctx context.Context, job func()) error {
	if job == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		return nil
	}
}

// Run submits fn and blocks until it has finished. A job whose ctx ended
// while it was queued is skipped and reports ctx.Err(). Once fn starts, Run
// waits for it to return even if ctx ends, so fn must honor ctx itself.
func (p *WorkerPool) Run(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	err := p.Submit(ctx, func() {
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- fn(ctx)
	})
	if err != nil {
		return err
	}
	return <-done
}

func (p *WorkerPool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
}

func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
