package booking

import (
	"context"
	"testing"
	"time"

	"courtbook-service/internal/browser"
	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
)

func newTestBooker(t *testing.T, page *fakePage) *Booker {
	t.Helper()
	log := logger.NewNop()
	shots := browser.NewRecorder(t.TempDir(), time.UTC, log)
	return NewBooker(page, newFakeClock(at(0, 0, 5)), shots, log)
}

func slotOn(day time.Time, hhmm string) entity.SlotRequest {
	return entity.SlotRequest{CourtURL: "https://example.org/court1", Date: day, Time: hhmm}
}

func TestBookSlotUnavailable(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	page := newFakePage()
	booker := newTestBooker(t, page)

	booked, onCalendar := booker.Book(context.Background(), slotOn(day, "1400"))
	if booked {
		t.Fatal("Book() = booked for an absent slot control")
	}
	if !onCalendar {
		t.Error("an unavailable slot should leave the page on the calendar")
	}
	if len(page.clicks) != 0 {
		t.Errorf("clicked %v for an absent slot, want no clicks", page.clicks)
	}
}

func TestBookSlotSuccess(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	sel := slotSelector(day, "1400")
	page := newFakePage()
	page.show(sel, selCalendar)
	page.onClick = func(p *fakePage, clicked string) {
		if clicked == sel {
			p.show(selCheckoutButton)
		}
	}
	booker := newTestBooker(t, page)

	booked, onCalendar := booker.Book(context.Background(), slotOn(day, "1400"))
	if !booked {
		t.Fatal("Book() = not booked for a visible slot control")
	}
	if !onCalendar {
		t.Error("back navigation landed off the calendar")
	}
	if got := page.clickCount(sel); got != 1 {
		t.Errorf("clicked slot %d times, want once", got)
	}
	if page.backs != 1 {
		t.Errorf("back navigations = %d, want 1", page.backs)
	}
}

func TestBookSlotBackNavigationLost(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	sel := slotSelector(day, "0800")
	page := newFakePage()
	page.show(sel) // calendar never reappears after going back
	page.onClick = func(p *fakePage, clicked string) {
		if clicked == sel {
			p.show(selCheckoutButton)
		}
	}
	booker := newTestBooker(t, page)

	booked, onCalendar := booker.Book(context.Background(), slotOn(day, "0800"))
	if !booked {
		t.Fatal("Book() = not booked for a visible slot control")
	}
	if onCalendar {
		t.Error("onCalendar = true with the calendar not visible, caller would trust a stale position")
	}
}

func TestBookBasketNeverAppears(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	sel := slotSelector(day, "1400")
	page := newFakePage()
	page.show(sel, selCalendar) // click never lands on the basket page
	booker := newTestBooker(t, page)

	booked, onCalendar := booker.Book(context.Background(), slotOn(day, "1400"))
	if booked {
		t.Fatal("Book() = booked with no basket page to confirm it")
	}
	if onCalendar {
		t.Error("onCalendar = true after an unsettled navigation")
	}
	if page.backs != 0 {
		t.Errorf("back navigations = %d during an unsettled navigation, want 0", page.backs)
	}
}

func TestSlotSelectorHourGranularity(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	want := `a.facility-book[href*="fdDate=26/09/2026"][href*="fdTime=14"]`
	if got := slotSelector(day, "1430"); got != want {
		t.Errorf("slotSelector() = %q, want %q", got, want)
	}
}
