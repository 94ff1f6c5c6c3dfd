package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Stop wraps an error to tell Do that further attempts are pointless
// (permission denied, worksheet missing, bad request). Do unwraps it and
// returns the inner error as-is.
type Stop struct {
	Err error
}

func (s Stop) Error() string { return s.Err.Error() }

func (s Stop) Unwrap() error { return s.Err }

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return Stop{Err: err}
}

// Policy describes a bounded exponential backoff.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy suits rate-limited HTTP APIs: 5 attempts, 1s base, 30s cap.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

// Delay returns the backoff before the given zero-based attempt number.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn up to p.MaxAttempts times with exponential backoff between
// attempts. A nil return stops immediately; an error wrapped in Stop (see
// Permanent) stops immediately and is returned unwrapped. Context
// cancellation aborts the wait.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.Delay(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		var stop Stop
		if errors.As(err, &stop) {
			return stop.Err
		}
		lastErr = err
	}
	return fmt.Errorf("giving up after %d attempts: %w", p.MaxAttempts, lastErr)
}
