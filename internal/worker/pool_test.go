package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	p1 := NewPool[int](context.Background(), 5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool[int](context.Background(), 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool[int](context.Background(), -1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool[int](context.Background(), 4)
	pool.Start()

	count := 20
	for i := 0; i < count; i++ {
		pool.Submit(func(ctx context.Context) int {
			// later tasks finish first
			time.Sleep(time.Duration(count-i) * time.Millisecond)
			return i * i
		})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	for i, v := range results {
		if v != i*i {
			t.Errorf("result %d: expected %d, got %d", i, i*i, v)
		}
	}
	if pool.Completed() != count {
		t.Errorf("expected %d completed, got %d", count, pool.Completed())
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool[struct{}](context.Background(), workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(func(ctx context.Context) struct{} {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxConcurrent {
				maxConcurrent = curr
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			atomic.AddInt32(&completed, 1)
			return struct{}{}
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(func(ctx context.Context) int { return 1 })
	}()

	select {
	case ok := <-done:
		if ok {
			t.Error("expected Submit to report false after shutdown")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[error](ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	cancel()

	done := make(chan []error)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != 1 {
			t.Fatalf("expected 1 slot, got %d", len(results))
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) int {
		close(started)
		time.Sleep(200 * time.Millisecond)
		return 0
	})

	<-started
	pool.Shutdown()

	select {
	case <-pool.collectDone:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestPool_ManyMoreTasksThanBuffers(t *testing.T) {
	const workers = 2
	count := 20 * workers

	done := make(chan []int)
	go func() {
		pool := NewPool[int](context.Background(), workers)
		pool.Start()
		for i := 0; i < count; i++ {
			pool.Submit(func(ctx context.Context) int { return i })
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != count {
			t.Fatalf("expected %d results, got %d", count, len(results))
		}
		for i, r := range results {
			if r != i {
				t.Errorf("result %d: expected %d, got %d", i, i, r)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("%d tasks on %d workers did not finish", count, workers)
	}
}
