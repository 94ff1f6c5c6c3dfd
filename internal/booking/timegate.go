package booking

import (
	"time"

	"context"

	"courtbook-service/pkg/logger"
)

// releaseMargin is how far past midnight the site reliably has the new
// day's slots live. Navigating in the first second after midnight has been
// seen to race the release job on the server side.
const releaseMargin = time.Second

// nearWindow is how close to midnight counts as "about to release". Inside
// this window the navigator waits for the boundary instead of searching a
// calendar that cannot yet contain the target week.
const nearWindow = 10 * time.Minute

// Gate decides where the current instant sits relative to the nightly
// release boundary and blocks until the boundary passes.
type Gate struct {
	clock Clock
	log   logger.Logger
}

func NewGate(clock Clock, log logger.Logger) *Gate {
	return &Gate{clock: clock, log: log}
}

// NearRelease reports whether now falls within nearWindow of the next
// midnight, or on 00:00:00 exactly. The boundary instant itself counts as
// near: waiting costs at most one second, while navigating at 00:00:00
// risks hitting the calendar before the release job has run.
func (g *Gate) NearRelease(now time.Time) bool {
	if h, m, s := now.Clock(); h == 0 && m == 0 && s == 0 {
		return true
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Sub(now) <= nearWindow
}

// WaitForRelease blocks until releaseMargin past the next midnight
// boundary. Called after the boundary has already passed, it returns
// immediately. It never wakes before the margin; waking a few hundred
// milliseconds late is acceptable, waking early is not.
func (g *Gate) WaitForRelease(ctx context.Context) error {
	now := g.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	target := midnight.Add(releaseMargin)

	if !now.Before(target) {
		if g.NearRelease(now) {
			target = midnight.AddDate(0, 0, 1).Add(releaseMargin)
		} else {
			g.log.Info("Release instant already passed", "now", now.Format("15:04:05"))
			return nil
		}
	}

	g.log.Info("Waiting for release",
		"now", now.Format("15:04:05"),
		"target", target.Format("15:04:05"))

	for {
		now = g.clock.Now()
		remaining := target.Sub(now)
		if remaining <= 0 {
			g.log.Info("Release instant reached", "now", now.Format("15:04:05.000"))
			return nil
		}

		var step time.Duration
		switch {
		case remaining <= 5*time.Second:
			g.log.Info("Release countdown", "remaining", remaining.Round(time.Second).String())
			step = time.Second
		default:
			g.log.Info("Release countdown", "remaining", remaining.Round(time.Second).String())
			// Coarse steps, shortened so the fine-grained phase starts
			// exactly at the five second mark.
			step = 10 * time.Second
			if until := remaining - 5*time.Second; until < step {
				step = until
			}
		}
		if step > remaining {
			step = remaining
		}
		if err := g.clock.Sleep(ctx, step); err != nil {
			return err
		}
	}
}
