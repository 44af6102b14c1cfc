package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces requests to one site. The delay runs from the end of one
// request to the start of the next, so a slow page never shortens the pause.
// A Pacer is not safe for concurrent use.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPacer creates a pacer for the given delay. A delay <= 0 disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the delay since the last Done has passed or ctx ends.
// The first request goes out immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.limiter == nil {
		return nil
	}

	now := time.Now()
	r := p.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Done marks the end of a request. The bucket restarts empty, so the next
// Wait lasts the full interval.
func (p *Pacer) Done() {
	if p.interval <= 0 {
		return
	}
	p.limiter = rate.NewLimiter(rate.Every(p.interval), 1)
	p.limiter.AllowN(time.Now(), 1)
}
