package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"courtbook-service/internal/domain/entity"
)

// fakePage implements browser.Page against an in-memory visibility map.
// Selectors not present in the map are invisible.
type fakePage struct {
	mu          sync.Mutex
	visible     map[string]bool
	clicks      []string
	fills       map[string]string
	navigations []string
	backs       int
	reloads     int
	failNav     bool
	// onClick runs after each recorded click, letting tests flip
	// visibility in response to interactions.
	onClick func(p *fakePage, sel string)
	// showOnReload lists selectors that become visible after a reload.
	showOnReload []string
}

func newFakePage() *fakePage {
	return &fakePage{visible: map[string]bool{}, fills: map[string]string{}}
}

func (p *fakePage) show(sels ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range sels {
		p.visible[s] = true
	}
}

func (p *fakePage) clickCount(sel string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.clicks {
		if c == sel {
			n++
		}
	}
	return n
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNav {
		return errors.New("navigation refused")
	}
	p.navigations = append(p.navigations, url)
	return nil
}

func (p *fakePage) Back(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backs++
	return nil
}

func (p *fakePage) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++
	for _, s := range p.showOnReload {
		p.visible[s] = true
	}
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.visible[sel] {
		return nil
	}
	return errors.New("not visible: " + sel)
}

func (p *fakePage) IsVisible(ctx context.Context, sel string, timeout time.Duration) bool {
	return p.WaitVisible(ctx, sel, timeout) == nil
}

func (p *fakePage) Click(ctx context.Context, sel string, timeout time.Duration) error {
	p.mu.Lock()
	if !p.visible[sel] {
		p.mu.Unlock()
		return errors.New("not visible: " + sel)
	}
	p.clicks = append(p.clicks, sel)
	hook := p.onClick
	p.mu.Unlock()
	if hook != nil {
		hook(p, sel)
	}
	return nil
}

func (p *fakePage) Fill(ctx context.Context, sel, value string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible[sel] {
		return errors.New("not visible: " + sel)
	}
	p.fills[sel] = value
	return nil
}

func (p *fakePage) Title(ctx context.Context) (string, error) { return "Fake Court", nil }

func (p *fakePage) HTML(ctx context.Context) (string, error) { return "<html></html>", nil }

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) { return []byte("png"), nil }

func (p *fakePage) AcceptDialogs() {}

// fakeClock advances its reading by exactly the requested amount on every
// Sleep, so countdown logic runs instantly and deterministically.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	return nil
}

func (c *fakeClock) totalSlept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.slept {
		total += d
	}
	return total
}

// fakeAudit records appended log entries.
type fakeAudit struct {
	mu      sync.Mutex
	entries []entity.LogEntry
}

func (a *fakeAudit) AppendLog(ctx context.Context, e entity.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) ReadLog(ctx context.Context, limit int) ([]entity.LogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]entity.LogEntry, len(a.entries))
	copy(out, a.entries)
	return out, nil
}
