// Package workpool runs submitted tasks on a fixed set of workers.
package workpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Submit after Shutdown.
var ErrClosed = errors.New("workpool: pool is shut down")

// Pool is a fixed-size worker set draining a bounded task queue.
//
// At most Size tasks run at once. Submit blocks while the queue is full.
// Shutdown stops intake; Wait joins every worker after the queue drains.
type Pool struct {
	size  int
	tasks chan func()
	group errgroup.Group

	mu     sync.RWMutex
	closed bool
}

// New starts size workers. size < 1 is treated as 1.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		size:  size,
		tasks: make(chan func(), size),
	}
	for i := 0; i < size; i++ {
		p.group.Go(p.work)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit queues task for execution.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks. Queued tasks still run. Safe to call twice.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.tasks)
}

// Wait shuts the pool down and blocks until all workers exit.
func (p *Pool) Wait() {
	p.Shutdown()
	_ = p.group.Wait()
}

func (p *Pool) work() error {
	for task := range p.tasks {
		run(task)
	}
	return nil
}

// run executes one task, containing a panic to that task.
func run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("workpool: task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}
