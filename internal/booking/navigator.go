package booking

import (
	"context"
	"fmt"
	"time"

	"courtbook-service/internal/browser"
	"courtbook-service/pkg/logger"
)

// NavigatorConfig bounds the calendar search. Zero values take defaults.
type NavigatorConfig struct {
	// MaxAdvances caps week advances in conservative mode.
	MaxAdvances int
	// BlindAdvances is how many weeks strategic mode advances before the
	// release boundary, positioning just short of where the target week
	// will appear.
	BlindAdvances int
	// BurstAttempts caps the post-release rapid advance loop.
	BurstAttempts int
	// CheckTimeout bounds each header visibility check in conservative
	// mode; BurstTimeout bounds the same check in the post-release burst,
	// where every millisecond of latency matters.
	CheckTimeout time.Duration
	BurstTimeout time.Duration
	// SearchBudget caps the total conservative search time.
	SearchBudget time.Duration
}

func (c NavigatorConfig) withDefaults() NavigatorConfig {
	if c.MaxAdvances == 0 {
		c.MaxAdvances = 5
	}
	if c.BlindAdvances == 0 {
		c.BlindAdvances = 3
	}
	if c.BurstAttempts == 0 {
		c.BurstAttempts = 20
	}
	if c.CheckTimeout == 0 {
		c.CheckTimeout = time.Second
	}
	if c.BurstTimeout == 0 {
		c.BurstTimeout = 500 * time.Millisecond
	}
	if c.SearchBudget == 0 {
		c.SearchBudget = 2 * time.Minute
	}
	return c
}

// Navigator drives the paginated weekly calendar to a target date. All
// failures are reported as a false return, never an error: a session with
// an unreachable date is a normal partial outcome for the run.
type Navigator struct {
	page  browser.Page
	gate  *Gate
	clock Clock
	shots *browser.Recorder
	log   logger.Logger
	cfg   NavigatorConfig
}

func NewNavigator(page browser.Page, gate *Gate, clock Clock, shots *browser.Recorder, log logger.Logger, cfg NavigatorConfig) *Navigator {
	return &Navigator{page: page, gate: gate, clock: clock, shots: shots, log: log, cfg: cfg.withDefaults()}
}

// OpenCourt loads the court's booking page and waits for the calendar
// widget to render.
func (n *Navigator) OpenCourt(ctx context.Context, url string) error {
	if err := n.page.Navigate(ctx, url); err != nil {
		n.shots.Capture(ctx, n.page, "navigation error")
		return fmt.Errorf("navigate to court page: %w", err)
	}
	if err := n.page.WaitVisible(ctx, selCalendar, 15*time.Second); err != nil {
		n.shots.Capture(ctx, n.page, "calendar missing")
		return fmt.Errorf("calendar did not render: %w", err)
	}
	if title, err := n.page.Title(ctx); err == nil {
		n.log.Info("Court page loaded", "title", title)
	}
	n.shots.Capture(ctx, n.page, "court page")
	return nil
}

// FindDate advances the calendar until the target week's header is
// displayed. Strategic mode exploits the midnight release timing; the
// conservative mode is the safe default when there is no race to win.
func (n *Navigator) FindDate(ctx context.Context, target time.Time, strategic bool) bool {
	if strategic {
		return n.findDateStrategic(ctx, target)
	}
	return n.findDateConservative(ctx, target)
}

func (n *Navigator) findDateConservative(ctx context.Context, target time.Time) bool {
	header := weekHeaderSelector(target)
	deadline := n.clock.Now().Add(n.cfg.SearchBudget)

	for attempt := 0; attempt <= n.cfg.MaxAdvances; attempt++ {
		if n.clock.Now().After(deadline) {
			n.log.Warn("Calendar search budget exhausted", "target", target.Format("02/01/2006"))
			n.shots.Capture(ctx, n.page, "search budget exhausted")
			return false
		}
		if n.page.IsVisible(ctx, header, n.cfg.CheckTimeout) {
			n.log.Info("Target week displayed", "target", target.Format("02/01/2006"), "advances", attempt)
			return true
		}
		if attempt == n.cfg.MaxAdvances {
			break
		}
		if !n.advanceWeek(ctx) {
			n.log.Warn("End of calendar before target week", "target", target.Format("02/01/2006"))
			n.shots.Capture(ctx, n.page, "end of calendar")
			return false
		}
	}

	n.log.Warn("Target week not found",
		"target", target.Format("02/01/2006"),
		"advances", n.cfg.MaxAdvances)
	n.shots.Capture(ctx, n.page, "date not found")
	return false
}

func (n *Navigator) findDateStrategic(ctx context.Context, target time.Time) bool {
	header := weekHeaderSelector(target)

	// Position three weeks out while the target week is still unreleased.
	// At the boundary only the final advances remain, so the burst phase
	// has minimal work left to do.
	n.log.Info("Pre-positioning calendar", "advances", n.cfg.BlindAdvances)
	for i := 0; i < n.cfg.BlindAdvances; i++ {
		if !n.advanceWeek(ctx) {
			n.log.Warn("Pre-positioning advance failed", "step", i+1)
			continue
		}
		n.shots.Capture(ctx, n.page, fmt.Sprintf("advance week %d", i+1))
	}

	if now := n.clock.Now(); n.gate.NearRelease(now) {
		if err := n.gate.WaitForRelease(ctx); err != nil {
			n.log.Warn("Release wait interrupted", "error", err)
			return false
		}
	} else {
		n.log.Info("Not near release, proceeding immediately", "now", now.Format("15:04:05"))
	}

	for attempt := 1; attempt <= n.cfg.BurstAttempts; attempt++ {
		if n.page.IsVisible(ctx, header, n.cfg.BurstTimeout) {
			n.log.Info("Target week displayed", "target", target.Format("02/01/2006"), "attempt", attempt)
			return true
		}
		if !n.advanceWeek(ctx) {
			break
		}
	}

	// The site occasionally serves a stale calendar right at the boundary;
	// one reload picks up the released week. Resubmission dialogs are
	// auto-accepted by the session's dialog handler.
	n.log.Info("Burst advance exhausted, reloading calendar")
	if err := n.page.Reload(ctx); err != nil {
		n.log.Warn("Calendar reload failed", "error", err)
		n.shots.Capture(ctx, n.page, "reload failed")
		return false
	}
	if n.page.IsVisible(ctx, header, 2*time.Second) {
		n.log.Info("Target week displayed after reload", "target", target.Format("02/01/2006"))
		return true
	}

	n.log.Warn("Target week not found after reload", "target", target.Format("02/01/2006"))
	n.shots.Capture(ctx, n.page, "date not found after reload")
	return false
}

// advanceWeek clicks the next-week control and waits for the new week to
// render. A missing control means the calendar's end has been reached.
func (n *Navigator) advanceWeek(ctx context.Context) bool {
	if !n.page.IsVisible(ctx, selNextWeek, 2*time.Second) {
		n.log.Warn("Next week control not available")
		return false
	}
	if err := n.page.Click(ctx, selNextWeek, 5*time.Second); err != nil {
		n.log.Warn("Week advance click failed", "error", err)
		return false
	}
	if err := n.page.WaitVisible(ctx, selWeekHeader, 5*time.Second); err != nil {
		n.log.Warn("Calendar did not settle after advance", "error", err)
	}
	return true
}
