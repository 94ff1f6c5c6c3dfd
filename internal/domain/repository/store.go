package repository

import (
	"context"
	"time"

	"courtbook-service/internal/domain/entity"
)

// ScheduleSource reads the booking schedule rows from the tabular store.
type ScheduleSource interface {
	ReadSchedule(ctx context.Context) ([]entity.ScheduleRow, error)
}

// AccountSource reads the account and court configuration rows.
type AccountSource interface {
	ReadAccounts(ctx context.Context) ([]entity.Account, error)
}

// AuditLog records every booking attempt and serves recent history back
// for the summary email.
type AuditLog interface {
	AppendLog(ctx context.Context, e entity.LogEntry) error
	ReadLog(ctx context.Context, limit int) ([]entity.LogEntry, error)
}

// BookingSink stores the scraped upcoming-bookings snapshot.
type BookingSink interface {
	WriteUpcoming(ctx context.Context, bookings []entity.UpcomingBooking) error
}

// Notifier dispatches the human-readable run reports.
type Notifier interface {
	SendSummary(ctx context.Context, summary entity.RunSummary, log []entity.LogEntry, recipients []string) error
	SendSessionReports(ctx context.Context, reports []entity.SessionReport, targetDate time.Time, recipient string) error
}
