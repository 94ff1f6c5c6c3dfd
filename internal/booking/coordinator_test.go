package booking

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courtbook-service/internal/browser"
	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
	"courtbook-service/pkg/metrics"
)

const testLoginURL = "https://example.org/security/login.aspx"

func loginReadyPage() *fakePage {
	page := newFakePage()
	page.show(selEmailInput, selPasswordInput, selLoginButton, selLogoutLink)
	return page
}

func newTestSession(t *testing.T, name string, page *fakePage, audit *fakeAudit) *Session {
	t.Helper()
	account := entity.Account{
		Name:     name,
		Email:    name + "@example.org",
		Password: "secret",
		Court:    "Court 1",
		CourtURL: "https://example.org/court1",
	}
	cfg := SessionConfig{
		LoginURL:      testLoginURL,
		BasketURL:     testBasketURL,
		ScreenshotDir: t.TempDir(),
		Location:      time.UTC,
	}
	connect := func(ctx context.Context) (browser.Page, func(), error) {
		return page, func() {}, nil
	}
	met := metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
	s := NewSession(account, cfg, connect, audit, newFakeClock(at(10, 0, 0)), met, logger.NewNop())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func TestLoginAllToleratesOneFailure(t *testing.T) {
	t.Parallel()

	audit := &fakeAudit{}
	broken := loginReadyPage()
	broken.failNav = true

	sessions := []*Session{
		newTestSession(t, "alice", loginReadyPage(), audit),
		newTestSession(t, "bob", broken, audit),
		newTestSession(t, "carol", loginReadyPage(), audit),
	}
	co := NewCoordinator(sessions, logger.NewNop())

	if !co.LoginAll(context.Background()) {
		t.Fatal("LoginAll() = false, want true with two working sessions")
	}

	loggedIn := 0
	for _, s := range sessions {
		if s.loggedIn {
			loggedIn++
		}
	}
	if loggedIn != 2 {
		t.Errorf("logged in sessions = %d, want 2", loggedIn)
	}
}

func TestBookAllAggregatesOutcomes(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	audit := &fakeAudit{}

	// Winner's calendar already shows the target week and both slots, and
	// every slot click lands on the basket page.
	winner := loginReadyPage()
	winner.show(selCalendar, weekHeaderSelector(day),
		slotSelector(day, "1400"), slotSelector(day, "1500"))
	winner.onClick = func(p *fakePage, clicked string) {
		p.show(selCheckoutButton)
	}

	// Loser reaches the calendar but both slots are taken.
	loser := loginReadyPage()
	loser.show(selCalendar, weekHeaderSelector(day))

	sessions := []*Session{
		newTestSession(t, "alice", winner, audit),
		newTestSession(t, "bob", loser, audit),
	}
	co := NewCoordinator(sessions, logger.NewNop())

	if !co.BookAll(context.Background(), day, []string{"1400", "1500"}) {
		t.Fatal("BookAll() = false, want true with one winning session")
	}

	summary := co.Summary(day)
	if summary.SuccessCount() != 2 {
		t.Errorf("SuccessCount() = %d, want 2", summary.SuccessCount())
	}
	if summary.FailureCount() != 2 {
		t.Errorf("FailureCount() = %d, want 2", summary.FailureCount())
	}
	if summary.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", summary.Sessions)
	}
	for _, o := range summary.Successful {
		if o.Account != "alice" {
			t.Errorf("successful outcome attributed to %q, want alice", o.Account)
		}
	}
}

func TestBookDayRecordsAttemptsUpFront(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.September, 26, 0, 0, 0, 0, time.UTC)
	audit := &fakeAudit{}

	// Court page loads but the target week never appears, so the whole
	// day fails before any slot attempt.
	page := loginReadyPage()
	page.show(selCalendar)

	s := newTestSession(t, "alice", page, audit)
	if s.BookDay(context.Background(), day, []string{"1400", "1500"}) {
		t.Fatal("BookDay() = true with an unreachable date")
	}

	// Audit appends happen asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, _ := audit.ReadLog(context.Background(), 0)
		attempting, failed := 0, 0
		for _, e := range entries {
			switch e.Status {
			case "Attempting":
				attempting++
			case "Failed":
				failed++
			}
		}
		if attempting == 2 && failed == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("audit rows = %d attempting / %d failed, want 2 / 2", attempting, failed)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCheckoutAllSkipsEmptySessions(t *testing.T) {
	t.Parallel()

	audit := &fakeAudit{}
	s := newTestSession(t, "alice", loginReadyPage(), audit)
	co := NewCoordinator([]*Session{s}, logger.NewNop())

	if !co.CheckoutAll(context.Background()) {
		t.Fatal("CheckoutAll() = false for a session with nothing booked")
	}
}

func TestCleanupAllReleasesEveryBrowser(t *testing.T) {
	t.Parallel()

	audit := &fakeAudit{}
	released := 0
	account := entity.Account{Name: "alice", Email: "a@example.org", Password: "x", Court: "Court 1", CourtURL: "u"}
	cfg := SessionConfig{Location: time.UTC, ScreenshotDir: t.TempDir()}
	connect := func(ctx context.Context) (browser.Page, func(), error) {
		return newFakePage(), func() { released++ }, nil
	}
	met := metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
	s := NewSession(account, cfg, connect, audit, newFakeClock(at(10, 0, 0)), met, logger.NewNop())
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	co := NewCoordinator([]*Session{s}, logger.NewNop())
	co.CleanupAll()
	co.CleanupAll() // idempotent
	if released != 1 {
		t.Errorf("browser released %d times, want exactly once", released)
	}
}
