package ratelimit

import (
	"context"
	"log"
	"time"
)

// CounterStore is the atomic counting primitive the limiter runs on. The
// increment and the expiry handling must be a single atomic operation on the
// store side; the concrete adapter is chosen once at startup.
type CounterStore interface {
	Increment(ctx context.Context, identity string, window time.Duration) (int64, error)
}

// FixedWindowLimiter counts attempts per identity in fixed windows of the
// configured duration. A window admits up to max attempts; once it lapses the
// counter vanishes and the next attempt starts fresh. Across a window boundary
// an identity can spend up to 2x max — accepted tradeoff of the fixed-window
// scheme.
type FixedWindowLimiter struct {
	store  CounterStore
	max    int64
	window time.Duration
}

func NewFixedWindowLimiter(store CounterStore, max int64, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{store: store, max: max, window: window}
}

// CheckAndCount records one attempt for identity and reports whether it is
// still within budget. Throttled attempts count too, so probing does not
// refresh the budget. When the counting store is unreachable the limiter
// fails open: booking availability outweighs precise limiting.
func (l *FixedWindowLimiter) CheckAndCount(ctx context.Context, identity string) bool {
	count, err := l.store.Increment(ctx, identity, l.window)
	if err != nil {
		log.Printf("WARN: rate limit store unavailable, allowing attempt for %s: %v", identity, err)
		return true
	}
	return count <= l.max
}
