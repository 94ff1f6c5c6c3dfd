// Package templates renders the booking run emails: a run-wide summary for
// the household recipients and a per-session transcript report for ops.
package templates

import (
	"fmt"
	"strings"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/internal/schedule"
)

// BuildSummaryEmail renders the run-wide report sent after every booking
// run, successful or not.
func BuildSummaryEmail(summary entity.RunSummary, logEntries []entity.LogEntry) (subject, body string) {
	subject = fmt.Sprintf("Tennis Court Booking Summary - %s", summary.TargetDate.Format("02/01/2006"))

	var b strings.Builder
	fmt.Fprintf(&b, "Tennis Court Booking - Summary Report\n\n")
	fmt.Fprintf(&b, "Target date: %s (%s)\n", summary.TargetDate.Format("02/01/2006"), summary.TargetDate.Weekday())
	fmt.Fprintf(&b, "Sessions run: %d\n", summary.Sessions)
	fmt.Fprintf(&b, "Slots booked: %d\n", summary.SuccessCount())
	fmt.Fprintf(&b, "Slots failed: %d\n\n", summary.FailureCount())

	b.WriteString("Successful bookings:\n")
	if len(summary.Successful) == 0 {
		b.WriteString("   none\n")
	}
	for _, o := range summary.Successful {
		fmt.Fprintf(&b, "   %s at %s (%s, %s)\n",
			o.Slot.DateLabel(), schedule.FormatTime(o.Slot.Time), o.Court, o.Account)
	}

	b.WriteString("\nFailed bookings:\n")
	if len(summary.Failed) == 0 {
		b.WriteString("   none\n")
	}
	for _, o := range summary.Failed {
		fmt.Fprintf(&b, "   %s at %s (%s, %s): %s\n",
			o.Slot.DateLabel(), schedule.FormatTime(o.Slot.Time), o.Court, o.Account, o.Detail)
	}

	if len(logEntries) > 0 {
		b.WriteString("\nRecent booking log:\n")
		for _, e := range logEntries {
			ts := ""
			if !e.Timestamp.IsZero() {
				ts = e.Timestamp.Format("2006-01-02 15:04:05") + " "
			}
			fmt.Fprintf(&b, "   %s%s | %s | %s %s | %s", ts, e.Email, e.Court, e.Date, e.Time, e.Status)
			if e.Detail != "" {
				fmt.Fprintf(&b, " (%s)", e.Detail)
			}
			b.WriteByte('\n')
		}
	}

	return subject, b.String()
}

// BuildSessionEmail renders one session's detail report, transcript and
// screenshot listing included.
func BuildSessionEmail(report entity.SessionReport, targetDate string) (subject, body string) {
	subject = fmt.Sprintf("Tennis Court Booking Session - %s - %s", report.Account, targetDate)

	var b strings.Builder
	fmt.Fprintf(&b, "Tennis Court Booking Session Report\n\n")
	fmt.Fprintf(&b, "Account: %s (%s)\n", report.Account, report.Email)
	fmt.Fprintf(&b, "Court: %s\n", report.Court)
	fmt.Fprintf(&b, "Target date: %s\n\n", targetDate)

	b.WriteString("Successful bookings:\n")
	if len(report.Successful) == 0 {
		b.WriteString("   none\n")
	}
	for _, o := range report.Successful {
		fmt.Fprintf(&b, "   %s at %s\n", o.Slot.DateLabel(), schedule.FormatTime(o.Slot.Time))
	}

	b.WriteString("\nFailed bookings:\n")
	if len(report.Failed) == 0 {
		b.WriteString("   none\n")
	}
	for _, o := range report.Failed {
		fmt.Fprintf(&b, "   %s at %s: %s\n", o.Slot.DateLabel(), schedule.FormatTime(o.Slot.Time), o.Detail)
	}

	b.WriteString("\nScreenshots:\n")
	if len(report.Screenshots) == 0 {
		b.WriteString("   none taken\n")
	}
	for i, path := range report.Screenshots {
		fmt.Fprintf(&b, "   %d. %s\n", i+1, path)
	}

	b.WriteString("\nSession transcript:\n")
	if len(report.Transcript) == 0 {
		b.WriteString("   no output captured\n")
	} else {
		b.WriteString(strings.Repeat("=", 72) + "\n")
		for _, line := range report.Transcript {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat("=", 72) + "\n")
	}

	return subject, b.String()
}
