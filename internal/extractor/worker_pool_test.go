package extractor

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	var count int64
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&count, 1)
		})
	}
	pool.Wait()

	if got := atomic.LoadInt64(&count); got != 100 {
		t.Errorf("executed %d jobs, want 100", got)
	}
}

func TestWorkerPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("expected a positive default worker count, got %d", pool.workers)
	}
	pool.Start()
	pool.Close()
}

func TestWorkerPoolCloseIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })
	<-done

	pool.Close()
	pool.Close() // second close must not panic
}
