package chainrpc

import (
	"context"
	"time"
)

// Backoff is a small exponential retry helper shared by every RPC method:
// double the delay after each failed attempt, capped, and bail out early if
// the caller's context is canceled first.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultBackoff makes up to five attempts, waiting 250ms before the first
// retry and doubling the wait each time, capped at 10s.
func DefaultBackoff() Backoff {
	return Backoff{MaxAttempts: 5, BaseDelay: 250 * time.Millisecond, MaxDelay: 10 * time.Second}
}

// Do calls fn until it succeeds or the attempt budget is exhausted,
// sleeping an exponentially increasing delay between attempts.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := b.BaseDelay
	for attempt := 0; attempt < b.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > b.MaxDelay {
				delay = b.MaxDelay
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
