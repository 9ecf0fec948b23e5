package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Submitter accepts background tasks. Pool implements it; services depend on
// the interface so tests can run tasks inline.
type Submitter interface {
	Submit(name string, task func(ctx context.Context)) bool
}

// Pool runs background tasks and waits for them on shutdown
type Pool struct {
	mu      sync.RWMutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	timeout time.Duration
	logger  *slog.Logger
}

// NewPool creates a new worker pool. Every task runs with taskTimeout; zero
// means tasks are only bounded by pool shutdown.
func NewPool(taskTimeout time.Duration, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:     ctx,
		cancel:  cancel,
		timeout: taskTimeout,
		logger:  logger,
	}
}

// Submit schedules a task. It returns false once the pool is shutting down.
func (p *Pool) Submit(name string, task func(ctx context.Context)) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("⚠️ [Worker] Pool is shut down, dropping task", "task", name)
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("❌ [Worker] Task panicked", "task", name, "panic", r)
			}
		}()

		ctx := p.ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(p.ctx, p.timeout)
			defer cancel()
		}
		task(ctx)
	}()

	return true
}

// Shutdown stops accepting tasks, waits up to timeout for running ones and
// then cancels whatever is left.
func (p *Pool) Shutdown(timeout time.Duration) {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, cancelling remaining tasks",
			"timeout", timeout,
		)
	}

	p.cancel()
}
