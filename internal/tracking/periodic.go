package tracking

import (
	"context"
	"time"
)

// Periodic runs fn at a fixed interval on a single goroutine, so tick
// N+1 never starts before tick N's callback returns. Stopping is
// cancelling the context.
type Periodic struct {
	interval time.Duration
	fn       func(now time.Time)
}

func NewPeriodic(interval time.Duration, fn func(now time.Time)) *Periodic {
	return &Periodic{interval: interval, fn: fn}
}

func (p *Periodic) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				p.fn(now)
			case <-ctx.Done():
				return
			}
		}
	}()
}
