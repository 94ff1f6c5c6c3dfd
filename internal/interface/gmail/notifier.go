// Package gmail dispatches the run reports through the Gmail API using an
// OAuth refresh token, the same way the rest of the household tooling
// sends mail.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
	"courtbook-service/templates"
)

// Notifier sends the summary and per-session emails.
type Notifier struct {
	svc    *gmailapi.Service
	sender string
	log    logger.Logger
}

// NewNotifier builds a Gmail client from the given token source.
func NewNotifier(ctx context.Context, tokenSource oauth2.TokenSource, sender string, log logger.Logger) (*Notifier, error) {
	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create gmail client: %w", err)
	}
	return &Notifier{svc: svc, sender: sender, log: log}, nil
}

// SendSummary mails the run-wide report to every configured recipient.
func (n *Notifier) SendSummary(ctx context.Context, summary entity.RunSummary, logEntries []entity.LogEntry, recipients []string) error {
	if len(recipients) == 0 {
		n.log.Warn("No summary recipients configured, skipping summary email")
		return nil
	}
	subject, body := templates.BuildSummaryEmail(summary, logEntries)

	var lastErr error
	sent := 0
	for _, r := range recipients {
		if err := n.send(ctx, r, subject, body); err != nil {
			n.log.Error("Summary email failed", "recipient", r, "error", err)
			lastErr = err
			continue
		}
		sent++
	}
	n.log.Info("Summary emails sent", "sent", sent, "recipients", len(recipients))
	if sent == 0 && lastErr != nil {
		return fmt.Errorf("no summary email delivered: %w", lastErr)
	}
	return nil
}

// SendSessionReports mails one transcript report per session to the ops
// recipient. Individual failures are logged and skipped.
func (n *Notifier) SendSessionReports(ctx context.Context, reports []entity.SessionReport, targetDate time.Time, recipient string) error {
	if recipient == "" {
		n.log.Warn("No ops recipient configured, skipping session reports")
		return nil
	}
	for _, report := range reports {
		subject, body := templates.BuildSessionEmail(report, targetDate.Format("02/01/2006"))
		if err := n.send(ctx, recipient, subject, body); err != nil {
			n.log.Error("Session report email failed", "account", report.Account, "error", err)
			continue
		}
		n.log.Info("Session report sent", "account", report.Account)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	raw := base64.URLEncoding.EncodeToString([]byte(msg.String()))
	_, err := n.svc.Users.Messages.Send("me", &gmailapi.Message{Raw: raw}).Context(ctx).Do()
	return err
}
