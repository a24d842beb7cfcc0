package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/glrv/reviewd/internal/logger"
)

// ErrQueueFull is returned by Submit when no queue slot frees up within the
// submit timeout. Callers apply their own failure policy instead of blocking
// the request path.
var ErrQueueFull = errors.New("worker queue is full")

// ErrPoolClosed is returned by Submit after Shutdown has started.
var ErrPoolClosed = errors.New("worker pool is shut down")

type poolJob struct {
	name string
	fn   func(context.Context)
}

// Pool is a bounded worker pool executing review jobs in the background.
// Concurrency is capped by the worker count and pending work by the queue
// size, so inbound event bursts cannot grow goroutines without bound.
type Pool struct {
	queue         chan poolJob
	done          chan struct{}
	submitTimeout time.Duration
	wg            sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates and starts a pool with the given number of workers and
// queue capacity.
func NewPool(workers, queueSize int, submitTimeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{
		queue:         make(chan poolJob, queueSize),
		done:          make(chan struct{}),
		submitTimeout: submitTimeout,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues a job, waiting up to the submit timeout for queue space.
func (p *Pool) Submit(name string, fn func(context.Context)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.submitTimeout)
	defer timer.Stop()

	select {
	case p.queue <- poolJob{name: name, fn: fn}:
		return nil
	case <-timer.C:
		return ErrQueueFull
	}
}

// Shutdown stops accepting work, drains queued jobs and waits for running
// workers to finish, up to the context deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
	p.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.queue:
			p.execute(job)
		case <-p.done:
			// Drain whatever was queued before shutdown began.
			for {
				select {
				case job := <-p.queue:
					p.execute(job)
				default:
					return
				}
			}
		}
	}
}

// execute runs one job. A panic in a job must not take down the worker or
// any unrelated job.
func (p *Pool) execute(job poolJob) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("job %s panicked: %v", job.name, r)
		}
	}()
	job.fn(context.Background())
}
