// Package usecase wires the booking pipeline together: resolve the target
// date and its slots, spin up one session per configured account, run the
// lifecycle phases and report the results.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtbook-service/internal/booking"
	"courtbook-service/internal/domain/entity"
	"courtbook-service/internal/domain/repository"
	"courtbook-service/internal/infrastructure/config"
	"courtbook-service/internal/schedule"
	"courtbook-service/pkg/logger"
	"courtbook-service/pkg/metrics"
)

// ErrNothingScheduled reports a run where the schedule has no slots for the
// target weekday. Not a failure: there was nothing to book.
var ErrNothingScheduled = errors.New("no slots scheduled for the target day")

// ErrNoBookings reports a run that attempted slots and booked none.
var ErrNoBookings = errors.New("no slots were booked")

// Store is the tabular backend the orchestrator reads config from and
// writes audit rows to.
type Store interface {
	repository.ScheduleSource
	repository.AccountSource
	repository.AuditLog
}

// BookingOrchestrator runs one full booking cycle.
type BookingOrchestrator struct {
	cfg      *config.Config
	store    Store
	notifier repository.Notifier // nil disables emails
	connect  booking.ConnectFunc
	clock    booking.Clock
	met      *metrics.Metrics
	log      logger.Logger
}

func NewBookingOrchestrator(
	cfg *config.Config,
	store Store,
	notifier repository.Notifier,
	connect booking.ConnectFunc,
	clock booking.Clock,
	met *metrics.Metrics,
	log logger.Logger,
) *BookingOrchestrator {
	return &BookingOrchestrator{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		connect:  connect,
		clock:    clock,
		met:      met,
		log:      log,
	}
}

// TargetDate is the day whose slots release at the next midnight boundary.
func (o *BookingOrchestrator) TargetDate() time.Time {
	now := o.clock.Now()
	target := now.AddDate(0, 0, o.cfg.ReleaseOffset)
	return time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, now.Location())
}

// Run executes the full cycle and returns the aggregated summary. The
// returned error is ErrNothingScheduled when the schedule is empty for the
// target day, ErrNoBookings when every attempt failed, or a hard error
// when the run could not start at all.
func (o *BookingOrchestrator) Run(ctx context.Context) (entity.RunSummary, error) {
	target := o.TargetDate()
	summary := entity.RunSummary{TargetDate: target}
	o.log.Info("Starting booking run",
		"target", target.Format("02/01/2006"),
		"weekday", target.Weekday().String())

	// Without the spreadsheet there is no schedule to book and no place to
	// record outcomes; abort before touching any browser.
	rows, err := o.store.ReadSchedule(ctx)
	if err != nil {
		return summary, fmt.Errorf("read schedule: %w", err)
	}
	entries := schedule.ParseSchedule(rows, o.log)
	slots := schedule.SlotsForWeekday(entries, target.Weekday())
	if len(slots) == 0 {
		o.log.Info("Nothing scheduled for target day", "weekday", target.Weekday().String())
		return summary, ErrNothingScheduled
	}
	o.log.Info("Slots resolved", "weekday", target.Weekday().String(), "slots", slots)

	accounts, err := o.loadAccounts(ctx)
	if err != nil {
		return summary, err
	}

	sessions := o.startSessions(ctx, accounts)
	if len(sessions) == 0 {
		return summary, errors.New("no booking session could be initialized")
	}

	co := booking.NewCoordinator(sessions, o.log)
	defer co.CleanupAll()

	if !co.LoginAll(ctx) {
		summary = o.finishRun(ctx, co, target, slots)
		return summary, errors.New("every session failed to log in")
	}

	co.BookAll(ctx, target, slots)
	co.CheckoutAll(ctx)
	co.LogoutAll(ctx)

	summary = o.finishRun(ctx, co, target, slots)
	if summary.SuccessCount() == 0 {
		return summary, ErrNoBookings
	}
	return summary, nil
}

// loadAccounts reads the account sheet and resolves each password from the
// environment. Incomplete rows are skipped so one bad account never stops
// the rest.
func (o *BookingOrchestrator) loadAccounts(ctx context.Context) ([]entity.Account, error) {
	accounts, err := o.store.ReadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	complete := make([]entity.Account, 0, len(accounts))
	for _, a := range accounts {
		a.Password = config.AccountPassword(a.Name)
		if !a.Complete() {
			o.log.Warn("Skipping incomplete account configuration", "account", a.Name)
			continue
		}
		complete = append(complete, a)
	}
	if len(complete) == 0 {
		return nil, errors.New("no usable account configured")
	}
	return complete, nil
}

func (o *BookingOrchestrator) startSessions(ctx context.Context, accounts []entity.Account) []*booking.Session {
	gate := booking.NewGate(o.clock, o.log)
	// Strategic mode is forced near the release boundary even when the
	// configuration turned it off; a run that close to midnight is racing
	// whether it meant to or not.
	strategic := o.cfg.Strategic || gate.NearRelease(o.clock.Now())
	o.log.Info("Navigation mode selected", "strategic", strategic)

	sessionCfg := booking.SessionConfig{
		LoginURL:      o.cfg.LoginURL,
		BasketURL:     o.cfg.BasketURL,
		Strategic:     strategic,
		ScreenshotDir: o.cfg.ScreenshotDir,
		Location:      o.clock.Now().Location(),
		Card: booking.CardDetails{
			Number:       o.cfg.CardNumber,
			ExpiryMonth:  o.cfg.CardExpiryMonth,
			ExpiryYear:   o.cfg.CardExpiryYear,
			SecurityCode: o.cfg.CardSecurityCode,
		},
		Cardholder: booking.CardholderDetails{
			Name:     o.cfg.CardholderName,
			Address:  o.cfg.Address,
			City:     o.cfg.City,
			Postcode: o.cfg.Postcode,
		},
	}

	sessions := make([]*booking.Session, 0, len(accounts))
	for _, account := range accounts {
		s := booking.NewSession(account, sessionCfg, o.connect, o.store, o.clock, o.met, o.log)
		if err := s.Init(ctx); err != nil {
			o.log.Error("Session initialization failed", "account", account.Name, "error", err)
			continue
		}
		sessions = append(sessions, s)
	}
	o.log.Info("Sessions initialized", "sessions", len(sessions), "accounts", len(accounts))
	return sessions
}

// finishRun aggregates results, appends the run-level audit row and sends
// the notification emails. Reporting failures are logged, never fatal.
func (o *BookingOrchestrator) finishRun(ctx context.Context, co *booking.Coordinator, target time.Time, slots []string) entity.RunSummary {
	summary := co.Summary(target)
	o.log.Info("Booking run complete",
		"target", target.Format("02/01/2006"),
		"sessions", summary.Sessions,
		"booked", summary.SuccessCount(),
		"failed", summary.FailureCount())

	runRow := entity.LogEntry{
		Timestamp: o.clock.Now(),
		Email:     "system",
		Court:     "all",
		Date:      target.Format("02/01/2006"),
		Time:      fmt.Sprintf("%d slots", len(slots)),
		Status:    "Summary",
		Detail:    fmt.Sprintf("%d booked, %d failed across %d sessions", summary.SuccessCount(), summary.FailureCount(), summary.Sessions),
	}
	if err := o.store.AppendLog(ctx, runRow); err != nil {
		o.log.Warn("Run summary audit row failed", "error", err)
	}

	if o.notifier == nil {
		return summary
	}
	recent, err := o.store.ReadLog(ctx, 50)
	if err != nil {
		o.log.Warn("Booking log read failed for summary email", "error", err)
	}
	if err := o.notifier.SendSummary(ctx, summary, recent, o.cfg.SummaryRecipients); err != nil {
		o.log.Error("Summary email failed", "error", err)
	}
	if err := o.notifier.SendSessionReports(ctx, co.Reports(), target, o.cfg.OpsRecipient); err != nil {
		o.log.Error("Session report emails failed", "error", err)
	}
	return summary
}
