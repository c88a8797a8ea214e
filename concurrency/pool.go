// Package concurrency provides the bounded pool that hands fire emissions to
// the sink. State is persisted before a record is submitted, so a slow or
// failing sink can delay output but never cause a duplicate fire.
package concurrency

import (
	"sync"
)

// Pool runs submitted emission tasks on a fixed number of workers
type Pool struct {
	maxWorkers int
	taskQueue  chan func()
	wg         sync.WaitGroup
	stopCh     chan struct{}
	started    bool
	stopped    bool
	mu         sync.Mutex
}

// NewPool creates a pool with the given worker count
func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 4 // default
	}

	return &Pool{
		maxWorkers: maxWorkers,
		taskQueue:  make(chan func(), maxWorkers*2), // buffer to avoid blocking
		stopCh:     make(chan struct{}),
	}
}

// Start starts the worker goroutines
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}

	p.started = true

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case task, ok := <-p.taskQueue:
			if !ok {
				return
			}
			task()
		}
	}
}

// Submit queues a task. If the pool has not been started the task runs
// synchronously, which keeps single-schedule embedding simple.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	started, stopped := p.started, p.stopped
	p.mu.Unlock()

	if stopped {
		return
	}
	if !started {
		task()
		return
	}

	select {
	case <-p.stopCh:
		// Pool is stopped, don't accept new tasks
		return
	case p.taskQueue <- task:
	}
}

// Stop stops the pool and waits for in-flight tasks to finish
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped {
		return
	}

	close(p.stopCh)
	close(p.taskQueue)
	p.wg.Wait()
	p.started = false
	p.stopped = true
}

// QueueLength returns the current number of queued tasks
func (p *Pool) QueueLength() int {
	return len(p.taskQueue)
}

// MaxWorkers returns the worker count
func (p *Pool) MaxWorkers() int {
	return p.maxWorkers
}
