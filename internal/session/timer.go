package session

import (
	"context"
	"sync"
	"time"
)

// Scheduler is the session's single tick source: a repeating interval that
// feeds the event pipeline while a phase timer is armed. Arming again
// cancels the previous run first, so a phase change never leaves two tickers
// racing.
type Scheduler struct {
	mu       sync.Mutex
	parent   context.Context
	cancel   context.CancelFunc
	interval time.Duration
	emit     func(ctx context.Context)
}

func NewScheduler(parent context.Context, interval time.Duration, emit func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		parent:   parent,
		interval: interval,
		emit:     emit,
	}
}

func (sc *Scheduler) Arm() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cancel != nil {
		sc.cancel()
	}
	ctx, cancel := context.WithCancel(sc.parent)
	sc.cancel = cancel

	go func() {
		ticker := time.NewTicker(sc.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sc.emit(ctx)
			}
		}
	}()
}

// Stop is idempotent.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.cancel != nil {
		sc.cancel()
		sc.cancel = nil
	}
}
