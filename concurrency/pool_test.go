package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolExecutesSubmittedTasks(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	defer pool.Stop()

	var count atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Tasks did not complete in time")
	}

	if count.Load() != 20 {
		t.Errorf("Expected 20 executed tasks, got %d", count.Load())
	}
}

func TestPoolRunsSynchronouslyWhenNotStarted(t *testing.T) {
	pool := NewPool(2)

	ran := false
	pool.Submit(func() { ran = true })

	if !ran {
		t.Error("Unstarted pool should run tasks synchronously")
	}
}

func TestPoolStopWaitsForInFlightTasks(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	started := make(chan struct{})
	var done atomic.Bool
	pool.Submit(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	})

	<-started
	pool.Stop()
	if !done.Load() {
		t.Error("Stop should wait for in-flight tasks")
	}
}

func TestPoolDefaultsWorkerCount(t *testing.T) {
	pool := NewPool(0)
	if pool.MaxWorkers() <= 0 {
		t.Errorf("Expected a positive default worker count, got %d", pool.MaxWorkers())
	}
}

func TestPoolRejectsAfterStop(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	pool.Stop()

	// Submit after stop must not panic or execute
	ran := false
	pool.Submit(func() { ran = true })
	if ran {
		t.Error("Stopped pool should not run new tasks")
	}
}
