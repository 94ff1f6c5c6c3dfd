package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
)

// Coordinator fans each lifecycle phase out over every session and fans
// the results back in. Sessions race independently; a failure in one never
// interrupts the others, and a phase succeeds when at least one session
// succeeded at it.
type Coordinator struct {
	sessions []*Session
	log      logger.Logger
}

func NewCoordinator(sessions []*Session, log logger.Logger) *Coordinator {
	return &Coordinator{sessions: sessions, log: log}
}

func (c *Coordinator) Sessions() []*Session { return c.sessions }

// runPhase executes fn concurrently for every session and collects one
// result per session index. Panics inside a session are converted to a
// failed result for that session only.
func (c *Coordinator) runPhase(ctx context.Context, name string, fn func(ctx context.Context, s *Session) bool) []bool {
	results := make([]bool, len(c.sessions))
	var wg sync.WaitGroup

	for i, s := range c.sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.log.Error("Session panicked", "phase", name, "account", s.Account.Name, "panic", fmt.Sprint(r))
					results[i] = false
				}
			}()
			results[i] = fn(ctx, s)
		}(i, s)
	}
	wg.Wait()

	ok := 0
	for _, r := range results {
		if r {
			ok++
		}
	}
	c.log.Info("Phase complete", "phase", name, "succeeded", ok, "total", len(c.sessions))
	return results
}

// LoginAll authenticates every session concurrently and reports whether at
// least one login succeeded.
func (c *Coordinator) LoginAll(ctx context.Context) bool {
	results := c.runPhase(ctx, "login", func(ctx context.Context, s *Session) bool {
		return s.Login(ctx)
	})
	return anyTrue(results)
}

// BookAll books the day's slots on every session concurrently.
func (c *Coordinator) BookAll(ctx context.Context, date time.Time, times []string) bool {
	c.log.Info("Booking all courts",
		"date", date.Format("02/01/2006"),
		"slots", times,
		"sessions", len(c.sessions))
	results := c.runPhase(ctx, "book", func(ctx context.Context, s *Session) bool {
		return s.BookDay(ctx, date, times)
	})
	return anyTrue(results)
}

// CheckoutAll finalizes every session's basket concurrently.
func (c *Coordinator) CheckoutAll(ctx context.Context) bool {
	results := c.runPhase(ctx, "checkout", func(ctx context.Context, s *Session) bool {
		return s.Checkout(ctx)
	})
	return anyTrue(results)
}

// LogoutAll logs every session out, best effort.
func (c *Coordinator) LogoutAll(ctx context.Context) {
	c.runPhase(ctx, "logout", func(ctx context.Context, s *Session) bool {
		s.Logout(ctx)
		return true
	})
}

// CleanupAll releases every session's browser unconditionally.
func (c *Coordinator) CleanupAll() {
	var wg sync.WaitGroup
	for _, s := range c.sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Cleanup()
		}(s)
	}
	wg.Wait()
	c.log.Info("All browser sessions released")
}

// Summary aggregates per-session outcomes into the run-wide record. Fan-in
// happens only after all phases resolved, so there is no concurrent write.
func (c *Coordinator) Summary(targetDate time.Time) entity.RunSummary {
	summary := entity.RunSummary{
		TargetDate: targetDate,
		Sessions:   len(c.sessions),
	}
	for _, s := range c.sessions {
		ok, failed := s.Results()
		summary.Successful = append(summary.Successful, ok...)
		summary.Failed = append(summary.Failed, failed...)
	}
	return summary
}

// Reports collects every session's transcript report.
func (c *Coordinator) Reports() []entity.SessionReport {
	reports := make([]entity.SessionReport, 0, len(c.sessions))
	for _, s := range c.sessions {
		reports = append(reports, s.Report())
	}
	return reports
}

func anyTrue(results []bool) bool {
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}
