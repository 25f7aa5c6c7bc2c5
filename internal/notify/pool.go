package notify

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lexiqai/meeting-analyzer/internal/observability"
)

// WorkerPool runs detached jobs on a fixed number of goroutines. Jobs have
// no result channel; callers never learn how a job ended.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewWorkerPool starts size workers fed by a queue holding up to queueSize jobs
func NewWorkerPool(size, queueSize int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	pool := &WorkerPool{
		tasks: make(chan func(), queueSize),
	}
	pool.wg.Add(size)
	for i := 0; i < size; i++ {
		go pool.worker()
	}
	return pool
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		observability.SetNotifyQueueDepth(len(p.tasks))
		p.run(fn)
	}
}

func (p *WorkerPool) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Notification job panicked")
		}
	}()
	fn()
}

// TrySubmit queues fn without blocking. It returns false if the queue is
// full or the pool has been stopped.
func (p *WorkerPool) TrySubmit(fn func()) bool {
	if fn == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}

	select {
	case p.tasks <- fn:
		observability.SetNotifyQueueDepth(len(p.tasks))
		return true
	default:
		return false
	}
}

// Pending returns the number of queued jobs not yet picked up by a worker
func (p *WorkerPool) Pending() int {
	return len(p.tasks)
}

// Stop rejects new jobs and waits for queued and running jobs to finish
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}
