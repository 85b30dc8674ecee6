package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

type job struct {
	name string
	run  Task
}

// Pool runs tasks off the request path on a fixed number of goroutines.
type Pool struct {
	queue     chan job
	mu        sync.RWMutex
	wg        sync.WaitGroup
	isClosing atomic.Bool
	timeout   time.Duration
	failed    atomic.Int64
}

// NewPool starts size workers. Each task gets its own context bounded by timeout.
func NewPool(size, queueSize int, timeout time.Duration) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		queue:   make(chan job, queueSize),
		timeout: timeout,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.startWorker()
	}

	return p
}

func (p *Pool) startWorker() {
	defer p.wg.Done()
	for j := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := j.run(ctx); err != nil {
			p.failed.Add(1)
			log.Error().Err(err).Str("task", j.name).Msg("background task failed")
		}
		cancel()
	}
}

// Submit queues a task. It returns false when the task was dropped because
// the pool is shutting down or the queue is full.
func (p *Pool) Submit(name string, t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.isClosing.Load() {
		log.Warn().Str("task", name).Msg("task submitted during shutdown, dropping")
		return false
	}
	select {
	case p.queue <- job{name: name, run: t}:
		return true
	default:
		log.Warn().Str("task", name).Msg("task queue full, dropping")
		return false
	}
}

// Failed is the number of tasks that returned an error so far.
func (p *Pool) Failed() int64 {
	return p.failed.Load()
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.isClosing.Swap(true) {
		p.mu.Unlock()
		return
	}
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}
