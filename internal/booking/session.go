package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtbook-service/internal/browser"
	"courtbook-service/internal/domain/entity"
	"courtbook-service/internal/domain/repository"
	"courtbook-service/pkg/logger"
	"courtbook-service/pkg/metrics"
)

// ConnectFunc opens a fresh browser page for one session. The returned
// release function tears the underlying browser down.
type ConnectFunc func(ctx context.Context) (browser.Page, func(), error)

// SessionConfig carries the per-run settings shared by every session.
type SessionConfig struct {
	LoginURL      string
	BasketURL     string
	Strategic     bool
	ScreenshotDir string
	Location      *time.Location
	Card          CardDetails
	Cardholder    CardholderDetails
	Navigator     NavigatorConfig
}

// position is the browser's last known location, kept so repeat bookings
// on the same court and date skip redundant navigation. Any navigation
// failure resets it to unknown so retries never trust stale state.
type position struct {
	courtURL string
	date     string // DD/MM/YYYY, "" when unknown
}

func (p *position) reset() { *p = position{} }

// Session runs one account against one court through the full lifecycle:
// login, navigate, book, checkout, logout, cleanup. It owns its browser
// exclusively; nothing inside a Session is shared with its siblings.
type Session struct {
	Account entity.Account

	cfg     SessionConfig
	connect ConnectFunc
	audit   repository.AuditLog
	clock   Clock
	gate    *Gate
	log     logger.Logger
	met     *metrics.Metrics

	page    browser.Page
	release func()
	shots   *browser.Recorder

	nav   *Navigator
	book  *Booker
	check *Checkout

	loggedIn bool
	pos      position

	mu         sync.Mutex
	successful []entity.Outcome
	failed     []entity.Outcome
	transcript []string
}

func NewSession(account entity.Account, cfg SessionConfig, connect ConnectFunc, audit repository.AuditLog, clock Clock, met *metrics.Metrics, log logger.Logger) *Session {
	s := &Session{
		Account: account,
		cfg:     cfg,
		connect: connect,
		audit:   audit,
		clock:   clock,
		met:     met,
		log:     log.With("account", account.Name, "court", account.Court),
	}
	s.gate = NewGate(clock, s.log)
	return s
}

// Init launches the session's browser and wires the pipeline components.
// A session that fails here never reaches the later phases.
func (s *Session) Init(ctx context.Context) error {
	page, release, err := s.connect(ctx)
	if err != nil {
		s.note("Browser launch failed: %v", err)
		return fmt.Errorf("launch browser for %s: %w", s.Account.Name, err)
	}
	s.page = page
	s.release = release
	// The site raises a resubmission dialog on reload; accept everything.
	s.page.AcceptDialogs()

	s.shots = browser.NewRecorder(s.cfg.ScreenshotDir, s.cfg.Location, s.log)
	s.nav = NewNavigator(s.page, s.gate, s.clock, s.shots, s.log, s.cfg.Navigator)
	s.book = NewBooker(s.page, s.clock, s.shots, s.log)
	s.check = NewCheckout(s.page, s.shots, s.log, s.cfg.BasketURL, s.cfg.Card, s.cfg.Cardholder)

	s.note("Browser session ready")
	return nil
}

// Login authenticates the account. A failed login marks the session
// unusable for the rest of the run; there is no retry at this level.
func (s *Session) Login(ctx context.Context) bool {
	s.note("Logging in %s", s.Account.Email)

	if err := SignIn(ctx, s.page, s.cfg.LoginURL, s.Account.Email, s.Account.Password); err != nil {
		s.note("Login failed: %v", err)
		s.shots.Capture(ctx, s.page, "login failed")
		s.met.ErrorsCount.WithLabelValues("login").Inc()
		return false
	}

	s.loggedIn = true
	s.note("Logged in")
	return true
}

// BookDay attempts every assigned time on the target date, recording each
// outcome to the audit log. Returns true when at least one slot landed.
func (s *Session) BookDay(ctx context.Context, date time.Time, times []string) bool {
	s.note("Booking %d slots for %s", len(times), date.Format("02/01/2006"))

	// Record every attempt up front so slots lost to an early failure
	// still show in the audit trail.
	for _, t := range times {
		s.recordAudit(date, t, "Attempting", "booking run started")
	}

	if s.pos.courtURL != s.Account.CourtURL {
		if err := s.nav.OpenCourt(ctx, s.Account.CourtURL); err != nil {
			s.note("Court page unreachable: %v", err)
			s.pos.reset()
			s.failDay(date, times, "failed to open court page")
			return false
		}
		s.pos = position{courtURL: s.Account.CourtURL}
	}

	if s.pos.date != date.Format("02/01/2006") {
		started := s.clock.Now()
		if !s.nav.FindDate(ctx, date, s.cfg.Strategic) {
			s.pos.reset()
			s.failDay(date, times, "target date not reachable on calendar")
			return false
		}
		s.met.NavigationTime.Observe(s.clock.Now().Sub(started).Seconds())
		s.pos.date = date.Format("02/01/2006")
	}

	booked := 0
	for _, t := range times {
		slot := entity.SlotRequest{CourtURL: s.Account.CourtURL, Date: date, Time: t}
		s.met.SlotsAttempted.Inc()

		ok, onCalendar := s.book.Book(ctx, slot)
		if !onCalendar {
			s.pos.reset()
		}
		if ok {
			booked++
			s.met.SlotsBooked.Inc()
			s.addOutcome(slot, true, "slot reserved")
			s.recordAudit(date, t, "Success", "slot reserved")
		} else {
			s.met.SlotsFailed.Inc()
			s.addOutcome(slot, false, "slot not available")
			s.recordAudit(date, t, "Failed", "slot not available or already taken")
		}
	}

	s.note("Booked %d/%d slots", booked, len(times))
	return booked > 0
}

// Checkout finalizes the basket. A session with nothing booked succeeds
// trivially.
func (s *Session) Checkout(ctx context.Context) bool {
	s.mu.Lock()
	reserved := len(s.successful)
	s.mu.Unlock()
	if reserved == 0 {
		s.note("Nothing to check out")
		return true
	}

	s.note("Checking out %d bookings", reserved)
	ok := s.check.Finalize(ctx)
	if ok {
		s.note("Checkout confirmed")
		s.met.CheckoutsTotal.WithLabelValues("success").Inc()
	} else {
		s.note("Checkout failed")
		s.met.CheckoutsTotal.WithLabelValues("failed").Inc()
	}
	return ok
}

// Logout is best effort. An expired session or an already logged-out page
// is tolerated silently.
func (s *Session) Logout(ctx context.Context) {
	if !s.loggedIn || s.page == nil {
		return
	}
	if s.page.IsVisible(ctx, selLogoutLink, 5*time.Second) {
		if err := s.page.Click(ctx, selLogoutLink, 5*time.Second); err != nil {
			s.log.Warn("Logout click failed", "error", err)
		} else {
			s.note("Logged out")
		}
	} else {
		s.note("Already logged out or session expired")
	}
	s.loggedIn = false
}

// Cleanup releases the browser. Safe to call regardless of how far the
// session got, and more than once.
func (s *Session) Cleanup() {
	if s.release != nil {
		s.release()
		s.release = nil
		s.note("Browser session closed")
	}
}

// Results returns copies of the session's terminal outcome lists.
func (s *Session) Results() (successful, failed []entity.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successful = append(successful, s.successful...)
	failed = append(failed, s.failed...)
	return successful, failed
}

// Report assembles the session's transcript and artifacts for the
// per-court detail email.
func (s *Session) Report() entity.SessionReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := entity.SessionReport{
		Account: s.Account.Name,
		Email:   s.Account.Email,
		Court:   s.Account.Court,
	}
	r.Successful = append(r.Successful, s.successful...)
	r.Failed = append(r.Failed, s.failed...)
	r.Transcript = append(r.Transcript, s.transcript...)
	if s.shots != nil {
		r.Screenshots = s.shots.Files()
	}
	return r
}

func (s *Session) addOutcome(slot entity.SlotRequest, booked bool, detail string) {
	o := entity.Outcome{
		Account: s.Account.Name,
		Court:   s.Account.Court,
		Slot:    slot,
		Booked:  booked,
		Detail:  detail,
	}
	s.mu.Lock()
	if booked {
		s.successful = append(s.successful, o)
	} else {
		s.failed = append(s.failed, o)
	}
	s.mu.Unlock()
}

// failDay records a day-level failure against every slot that was going to
// be attempted, so the audit trail explains each one.
func (s *Session) failDay(date time.Time, times []string, detail string) {
	for _, t := range times {
		slot := entity.SlotRequest{CourtURL: s.Account.CourtURL, Date: date, Time: t}
		s.met.SlotsFailed.Inc()
		s.addOutcome(slot, false, detail)
		s.recordAudit(date, t, "Failed", detail)
	}
}

func (s *Session) recordAudit(date time.Time, slotTime, status, detail string) {
	entry := entity.LogEntry{
		Timestamp: s.clock.Now(),
		Email:     s.Account.Email,
		Court:     s.Account.Court,
		Date:      date.Format("02/01/2006"),
		Time:      slotTime,
		Status:    status,
		Detail:    detail,
	}
	// Audit writes never block the booking race.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.audit.AppendLog(ctx, entry); err != nil {
			s.log.Warn("Audit log append failed", "error", err)
		}
	}()
}

// note logs the line and keeps it in the transcript for the report email.
func (s *Session) note(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.transcript = append(s.transcript, fmt.Sprintf("%s %s", s.clock.Now().Format("15:04:05.000"), line))
	s.mu.Unlock()
	s.log.Info(line)
}
