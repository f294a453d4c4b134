package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter hands out request slots at least interval apart. Callers that
// arrive early are queued behind the slots already promised.
type RateLimiter struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval < 0 {
		interval = 0
	}
	return &RateLimiter{interval: interval}
}

// PerSecond builds a limiter allowing rps requests per second.
func PerSecond(rps int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	return NewRateLimiter(time.Second / time.Duration(rps))
}

// Wait blocks until the caller's slot comes up or ctx ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	slot := time.Now()
	if r.next.After(slot) {
		slot = r.next
	}
	r.next = slot.Add(r.interval)
	r.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
