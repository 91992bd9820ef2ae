// Package worker provides a small fixed-size goroutine pool for fire-and-forget
// jobs, used to keep event publishing off the request path.
package worker

import "sync"

type task func()

// Pool runs submitted tasks on n goroutines over a bounded queue.
type Pool struct {
	wg      sync.WaitGroup
	mu      sync.Mutex
	jobs    chan task
	stopped bool
}

// NewPool starts n workers.
func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 256)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Submit enqueues a task, blocking if the queue is full. Tasks submitted
// after Stop are dropped.
func (p *Pool) Submit(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.jobs <- f
}

// Stop closes the queue and waits for in-flight tasks to finish. It is safe
// to call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
