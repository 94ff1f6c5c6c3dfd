package entity

import "time"

// RunSummary aggregates one full booking run across all sessions.
// Downstream consumers (audit log, notification emails) read from this
// fixed shape rather than per-session internals.
type RunSummary struct {
	TargetDate time.Time
	Sessions   int
	Successful []Outcome
	Failed     []Outcome
}

func (s RunSummary) SuccessCount() int { return len(s.Successful) }

func (s RunSummary) FailureCount() int { return len(s.Failed) }

// SessionReport carries one session's transcript and artifacts for the
// per-court detail email.
type SessionReport struct {
	Account     string
	Email       string
	Court       string
	Successful  []Outcome
	Failed      []Outcome
	Transcript  []string
	Screenshots []string
}
