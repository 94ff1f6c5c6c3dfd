package booking

import (
	"context"
	"time"

	"courtbook-service/internal/browser"
	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
)

// slotWait bounds how long the booker waits for a slot's booking anchor.
// An anchor absent after this is a taken or unreleased slot, not a fault.
const slotWait = 3 * time.Second

// basketWait bounds how long the booker waits for the basket page after
// clicking a slot anchor.
const basketWait = 10 * time.Second

// Booker reserves individual slots on an already-located calendar week.
type Booker struct {
	page  browser.Page
	clock Clock
	shots *browser.Recorder
	log   logger.Logger
}

func NewBooker(page browser.Page, clock Clock, shots *browser.Recorder, log logger.Logger) *Booker {
	return &Booker{page: page, clock: clock, shots: shots, log: log}
}

// Book attempts to put the slot in the basket. booked reports whether the
// slot was reserved; an unavailable slot is an expected outcome in the
// race, never an error. onCalendar reports whether the page is back on the
// calendar view afterwards, so the caller knows when its position cache is
// stale and the next attempt must re-navigate.
func (b *Booker) Book(ctx context.Context, slot entity.SlotRequest) (booked, onCalendar bool) {
	sel := slotSelector(slot.Date, slot.Time)

	if !b.page.IsVisible(ctx, sel, slotWait) {
		b.log.Info("Slot not available", "date", slot.DateLabel(), "time", slot.Time)
		b.shots.Capture(ctx, b.page, "slot unavailable "+slot.Time)
		return false, true
	}

	b.shots.Capture(ctx, b.page, "slot before click "+slot.Time)
	if err := b.page.Click(ctx, sel, 5*time.Second); err != nil {
		b.log.Warn("Slot click failed", "time", slot.Time, "error", err)
		b.shots.Capture(ctx, b.page, "slot click failed "+slot.Time)
		return false, false
	}

	// The click starts a navigation to the basket. Wait for the basket
	// page before screenshotting or touching history, otherwise Back
	// races the in-flight navigation onto the wrong entry.
	if err := b.page.WaitVisible(ctx, selCheckoutButton, basketWait); err != nil {
		b.log.Warn("Basket page did not appear after slot click", "time", slot.Time, "error", err)
		b.shots.Capture(ctx, b.page, "basket missing "+slot.Time)
		return false, false
	}

	b.log.Info("Slot added to basket", "date", slot.DateLabel(), "time", slot.Time)
	b.shots.Capture(ctx, b.page, "slot in basket "+slot.Time)

	return true, b.returnToCalendar(ctx)
}

// returnToCalendar backs out of the basket confirmation so the next slot
// can be booked from the same week view. The basket page has no back
// control, so this uses browser history.
func (b *Booker) returnToCalendar(ctx context.Context) bool {
	if err := b.page.Back(ctx); err != nil {
		b.log.Warn("Back navigation to calendar failed", "error", err)
		return false
	}
	// The calendar re-renders asynchronously after history navigation.
	_ = b.clock.Sleep(ctx, 2*time.Second)

	if !b.page.IsVisible(ctx, selCalendar, 3*time.Second) {
		b.log.Warn("Calendar not visible after back navigation")
		return false
	}
	b.shots.Capture(ctx, b.page, "returned to calendar")
	return true
}
