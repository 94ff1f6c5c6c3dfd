// Package booking implements the midnight-release booking pipeline: the
// release-time gate, the weekly calendar navigator, the slot booker, the
// checkout flow and the per-account session that composes them, plus the
// coordinator that runs sessions concurrently.
package booking

import (
	"context"
	"time"
)

// Clock supplies the current civil time and interruptible sleeps. The
// production clock reads the site's timezone; tests substitute a fake so
// the release gate and countdown logic run deterministically.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct {
	loc *time.Location
}

// NewClock returns a Clock reporting wall time in loc.
func NewClock(loc *time.Location) Clock {
	return &realClock{loc: loc}
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
