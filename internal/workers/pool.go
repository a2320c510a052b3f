package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"media-manager/internal/logging"
)

// ErrPoolClosed is returned by Submit after Close has been called.
var ErrPoolClosed = errors.New("worker pool is closed")

type job struct {
	ctx context.Context
	run func(ctx context.Context)
}

// Pool is a fixed-size set of goroutines consuming submitted jobs from a
// bounded queue.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewPool starts size workers reading from a queue of the given capacity.
func NewPool(size, queue int) *Pool {
	if size < 1 {
		size = 1
	}
	if queue < 0 {
		queue = 0
	}

	p := &Pool{jobs: make(chan job, queue)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logging.Debug("Worker pool started with %d workers (queue %d)", size, queue)
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		logging.Debug("worker %d picked up job", id)
		j.run(j.ctx)
	}
}

// enqueue blocks until the job is queued, ctx is done, or the pool closes.
func (p *Pool) enqueue(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for queued jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// Future holds the eventual outcome of a submitted job.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the job has finished (or was abandoned).
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finishes or ctx is done. A ctx expiry does not
// cancel the job itself.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit queues fn on p and returns a Future for its result. If ctx is done
// before a worker picks the job up, fn never runs and the Future resolves to
// ctx.Err(). Once started, fn runs to completion.
func Submit[T any](ctx context.Context, p *Pool, fn func() (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}

	j := job{
		ctx: ctx,
		run: func(ctx context.Context) {
			defer close(f.done)
			if err := ctx.Err(); err != nil {
				f.err = err
				return
			}
			defer func() {
				if r := recover(); r != nil {
					logging.Error("worker job panicked: %v", r)
					f.err = fmt.Errorf("job panicked: %v", r)
				}
			}()
			f.value, f.err = fn()
		},
	}

	if err := p.enqueue(ctx, j); err != nil {
		return nil, err
	}
	return f, nil
}
