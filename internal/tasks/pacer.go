package tasks

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out serialized calls against the upstream API. Wait applies
// a steady rate limit; Penalize schedules one elevated delay before the
// next call after an upstream failure.
//
// The policy lives here, outside the aggregation and write logic, so it
// can be tuned or swapped without touching either.
type Pacer struct {
	limiter *rate.Limiter
	penalty time.Duration

	mu        sync.Mutex
	penalized bool
}

// NewPacer creates a pacer sustaining rps requests per second with the
// given penalty delay. Non-positive arguments fall back to defaults.
func NewPacer(rps float64, penalty time.Duration) *Pacer {
	if rps <= 0 {
		rps = 5.0
	}
	if penalty <= 0 {
		penalty = 1500 * time.Millisecond
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		penalty: penalty,
	}
}

// Wait blocks until the next call is allowed. A pending penalty is served
// first, then the steady limiter.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	penalized := p.penalized
	p.penalized = false
	p.mu.Unlock()

	if penalized {
		timer := time.NewTimer(p.penalty)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return p.limiter.Wait(ctx)
}

// Penalize flags the next Wait to serve the elevated delay.
func (p *Pacer) Penalize() {
	p.mu.Lock()
	p.penalized = true
	p.mu.Unlock()
}
