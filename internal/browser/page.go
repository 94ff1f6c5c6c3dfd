// Package browser wraps the page-driving capability set the booking state
// machines depend on: navigate, wait for visibility, click, fill, reload,
// screenshot. The production implementation drives headless Chrome through
// chromedp; the booking package only sees the Page interface, so any engine
// exposing the same capabilities substitutes.
package browser

import (
	"context"
	"strings"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Page is one browser tab. Selectors are CSS by default; selectors starting
// with "//" are treated as XPath, which is how text-content matches are
// expressed.
type Page interface {
	// Navigate loads the URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// Back performs browser history back navigation.
	Back(ctx context.Context) error
	// Reload re-requests the current page.
	Reload(ctx context.Context) error
	// WaitVisible blocks until the element is visible or the timeout
	// elapses, in which case it returns an error.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	// IsVisible is WaitVisible folded to a boolean for the expected
	// slot-unavailable / end-of-calendar checks.
	IsVisible(ctx context.Context, sel string, timeout time.Duration) bool
	// Click waits for the element and clicks it.
	Click(ctx context.Context, sel string, timeout time.Duration) error
	// Fill waits for the input and replaces its value.
	Fill(ctx context.Context, sel, value string, timeout time.Duration) error
	// Title returns the document title.
	Title(ctx context.Context) (string, error)
	// HTML returns the full document markup for out-of-band parsing.
	HTML(ctx context.Context) (string, error)
	// Screenshot captures a full-page PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// AcceptDialogs installs a handler that accepts any JavaScript
	// dialog (confirm-resubmission prompts on reload).
	AcceptDialogs()
}

// Browser owns one exclusive Chrome process and its single tab. Each
// booking session launches its own Browser; nothing is shared.
type Browser struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

// Launch starts a Chrome instance and opens a tab.
func Launch(ctx context.Context, headless bool) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.WindowSize(1366, 900),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser process to start now, so a
	// broken Chrome install fails session initialization instead of the
	// first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}
	return &Browser{tabCtx: tabCtx, tabCancel: tabCancel, allocCancel: allocCancel}, nil
}

// Page returns the browser's tab.
func (b *Browser) Page() Page {
	return &chromePage{ctx: b.tabCtx}
}

// Close tears the browser process down. Safe to call more than once.
func (b *Browser) Close() {
	if b.tabCancel != nil {
		b.tabCancel()
		b.tabCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
}

type chromePage struct {
	ctx context.Context
}

func queryOption(sel string) chromedp.QueryOption {
	if strings.HasPrefix(sel, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx := p.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, 20*time.Second,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Back(ctx context.Context) error {
	return p.run(ctx, 10*time.Second,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Reload(ctx context.Context) error {
	return p.run(ctx, 15*time.Second,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitVisible(sel, queryOption(sel)))
}

func (p *chromePage) IsVisible(ctx context.Context, sel string, timeout time.Duration) bool {
	return p.WaitVisible(ctx, sel, timeout) == nil
}

func (p *chromePage) Click(ctx context.Context, sel string, timeout time.Duration) error {
	return p.run(ctx, timeout,
		chromedp.WaitVisible(sel, queryOption(sel)),
		chromedp.Click(sel, queryOption(sel)),
	)
}

func (p *chromePage) Fill(ctx context.Context, sel, value string, timeout time.Duration) error {
	return p.run(ctx, timeout,
		chromedp.WaitVisible(sel, queryOption(sel)),
		chromedp.SetValue(sel, value, queryOption(sel)),
	)
}

func (p *chromePage) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, 5*time.Second, chromedp.Title(&title))
	return title, err
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, 10*time.Second, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, 10*time.Second, chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

func (p *chromePage) AcceptDialogs() {
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		if _, ok := ev.(*cdppage.EventJavascriptDialogOpening); ok {
			go func() {
				_ = chromedp.Run(p.ctx, cdppage.HandleJavaScriptDialog(true))
			}()
		}
	})
}
