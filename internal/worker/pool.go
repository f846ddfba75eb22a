package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Task is a unit of work executed by the pool
type Task[T any] func(ctx context.Context) T

type queued[T any] struct {
	index int
	task  Task[T]
}

type finished[T any] struct {
	index int
	value T
}

// Pool runs tasks on a fixed number of goroutines and hands results back in
// submission order.
type Pool[T any] struct {
	workers    int
	queue      chan queued[T]
	results    chan finished[T]
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	// collected is owned by the collector goroutine until collectDone closes
	collected   []finished[T]
	collectDone chan struct{}

	submitted int
	completed atomic.Int64
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers.
func NewPool[T any](ctx context.Context, workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool[T]{
		workers:    workers,
		queue:      make(chan queued[T], workers*2),
		results:    make(chan finished[T], workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the worker goroutines and the result collector. Results
// are drained while tasks are still being submitted, so Submit only blocks
// until a worker frees a queue slot.
func (p *Pool[T]) Start() {
	p.collectDone = make(chan struct{})
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[T]) collect() {
	defer close(p.collectDone)
	for r := range p.results {
		p.collected = append(p.collected, r)
	}
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			value := job.task(p.ctx)
			p.completed.Add(1)
			select {
			case p.results <- finished[T]{index: job.index, value: value}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task. It returns false when the pool was cancelled
// before the task could be queued. Submit and Wait must be called from the
// same goroutine.
func (p *Pool[T]) Submit(task Task[T]) bool {
	job := queued[T]{index: p.submitted, task: task}
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- job:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for the workers and returns one entry per
// submitted task in submission order. Tasks dropped by cancellation leave
// the zero value in their position. Start must have been called.
func (p *Pool[T]) Wait() []T {
	close(p.queue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone

	out := make([]T, p.submitted)
	for _, r := range p.collected {
		out[r.index] = r.value
	}
	p.cancelFunc()
	return out
}

// Completed reports how many tasks have finished so far
func (p *Pool[T]) Completed() int {
	return int(p.completed.Load())
}

// Shutdown stops the pool immediately
func (p *Pool[T]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool[T]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
