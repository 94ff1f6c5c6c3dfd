// Package repository implements the tabular data access layer on Google
// Sheets: schedule and account configuration reads, the append-only
// booking audit log, and the upcoming-bookings snapshot.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
	"courtbook-service/pkg/retry"
)

const (
	accountsSheet = "Account & Court Configuration"
	scheduleSheet = "Booking Schedule"
	logSheet      = "Booking Log"
	upcomingSheet = "Upcoming Camden Bookings"

	auditTimeLayout = "2006-01-02 15:04:05"
)

// ErrWorksheetNotFound reports a read against a worksheet that does not
// exist yet. Callers can suggest running the template setup.
var ErrWorksheetNotFound = errors.New("worksheet not found")

var sheetHeaders = map[string][]string{
	accountsSheet: {"Account", "Email", "Court Number", "Court URL"},
	scheduleSheet: {"Day", "Time", "Notes"},
	logSheet:      {"Timestamp", "Email", "Court", "Date", "Time", "Status", "Error Details"},
	upcomingSheet: {"Account", "Email", "Booked On", "Facility", "Court", "Date", "Time"},
}

// SheetsRepository talks to one spreadsheet holding all of the service's
// tabular state. Transient API failures (rate limits, server errors) are
// retried with backoff; permission and not-found errors fail immediately.
type SheetsRepository struct {
	svc     *sheets.Service
	sheetID string
	policy  retry.Policy
	log     logger.Logger
}

// NewSheetsRepository builds a service-account client for the spreadsheet.
// credentials is either a path to a service account key file or the key
// JSON itself.
func NewSheetsRepository(ctx context.Context, sheetID, credentials string, log logger.Logger) (*SheetsRepository, error) {
	if sheetID == "" {
		return nil, errors.New("spreadsheet id is not configured")
	}
	var opt option.ClientOption
	if strings.HasPrefix(strings.TrimSpace(credentials), "{") {
		opt = option.WithCredentialsJSON([]byte(credentials))
	} else {
		opt = option.WithCredentialsFile(credentials)
	}
	svc, err := sheets.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &SheetsRepository{
		svc:     svc,
		sheetID: sheetID,
		policy:  retry.DefaultPolicy(),
		log:     log,
	}, nil
}

// classify maps an API error onto the retry policy: rate limits and server
// errors are worth retrying, everything else is permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 429 || gerr.Code >= 500 {
			return err
		}
		return retry.Permanent(err)
	}
	// Transport-level failures have no status code; retry them.
	return err
}

func (r *SheetsRepository) getValues(ctx context.Context, readRange string) ([][]interface{}, error) {
	var resp *sheets.ValueRange
	err := retry.Do(ctx, r.policy, func() error {
		var err error
		resp, err = r.svc.Spreadsheets.Values.Get(r.sheetID, readRange).Context(ctx).Do()
		return classify(err)
	})
	if err != nil {
		// The API reports a missing tab as an unparseable range.
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 400 && strings.Contains(gerr.Message, "Unable to parse range") {
			return nil, fmt.Errorf("read %s: %w", readRange, ErrWorksheetNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", readRange, err)
	}
	return resp.Values, nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// ReadSchedule returns the raw schedule rows. Normalization and bad-row
// handling belong to the schedule parser, not the store.
func (r *SheetsRepository) ReadSchedule(ctx context.Context) ([]entity.ScheduleRow, error) {
	values, err := r.getValues(ctx, scheduleSheet+"!A:C")
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("%s has no data rows", scheduleSheet)
	}
	rows := make([]entity.ScheduleRow, 0, len(values)-1)
	for _, v := range values[1:] {
		row := entity.ScheduleRow{Day: cell(v, 0), Time: cell(v, 1), Notes: cell(v, 2)}
		if row.Day == "" && row.Time == "" {
			continue
		}
		rows = append(rows, row)
	}
	r.log.Info("Schedule loaded", "rows", len(rows))
	return rows, nil
}

// ReadAccounts returns the account and court configuration. Passwords live
// in the environment, not the sheet; the caller fills them in.
func (r *SheetsRepository) ReadAccounts(ctx context.Context) ([]entity.Account, error) {
	values, err := r.getValues(ctx, accountsSheet+"!A:D")
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("%s has no data rows", accountsSheet)
	}
	accounts := make([]entity.Account, 0, len(values)-1)
	for _, v := range values[1:] {
		a := entity.Account{
			Name:     cell(v, 0),
			Email:    cell(v, 1),
			Court:    cell(v, 2),
			CourtURL: cell(v, 3),
		}
		if a.Name == "" && a.Email == "" {
			continue
		}
		accounts = append(accounts, a)
	}
	r.log.Info("Account configuration loaded", "accounts", len(accounts))
	return accounts, nil
}

// AppendLog appends one audit row to the booking log.
func (r *SheetsRepository) AppendLog(ctx context.Context, e entity.LogEntry) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{{
		e.Timestamp.Format(auditTimeLayout),
		e.Email,
		e.Court,
		e.Date,
		e.Time,
		e.Status,
		e.Detail,
	}}}
	err := retry.Do(ctx, r.policy, func() error {
		_, err := r.svc.Spreadsheets.Values.
			Append(r.sheetID, logSheet+"!A:G", vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("append booking log: %w", err)
	}
	return nil
}

// ReadLog returns up to limit audit rows, newest first. limit <= 0 reads
// everything.
func (r *SheetsRepository) ReadLog(ctx context.Context, limit int) ([]entity.LogEntry, error) {
	values, err := r.getValues(ctx, logSheet+"!A:G")
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}
	data := values[1:]
	if limit > 0 && len(data) > limit {
		data = data[len(data)-limit:]
	}
	entries := make([]entity.LogEntry, 0, len(data))
	for i := len(data) - 1; i >= 0; i-- {
		v := data[i]
		entry := entity.LogEntry{
			Email:  cell(v, 1),
			Court:  cell(v, 2),
			Date:   cell(v, 3),
			Time:   cell(v, 4),
			Status: cell(v, 5),
			Detail: cell(v, 6),
		}
		if ts := cell(v, 0); ts != "" {
			// Timestamps are stored without a zone; keep them as written.
			if parsed, perr := parseAuditTime(ts); perr == nil {
				entry.Timestamp = parsed
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteUpcoming replaces the upcoming-bookings snapshot with the freshly
// scraped one.
func (r *SheetsRepository) WriteUpcoming(ctx context.Context, bookings []entity.UpcomingBooking) error {
	if err := retry.Do(ctx, r.policy, func() error {
		_, err := r.svc.Spreadsheets.Values.
			Clear(r.sheetID, upcomingSheet+"!A:G", &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		return classify(err)
	}); err != nil {
		return fmt.Errorf("clear upcoming bookings: %w", err)
	}

	rows := [][]interface{}{toRow(sheetHeaders[upcomingSheet])}
	for _, b := range bookings {
		rows = append(rows, []interface{}{b.Account, b.Email, b.BookedOn, b.Facility, b.Court, b.Date, b.Time})
	}
	vr := &sheets.ValueRange{Values: rows}
	if err := retry.Do(ctx, r.policy, func() error {
		_, err := r.svc.Spreadsheets.Values.
			Update(r.sheetID, upcomingSheet+"!A1", vr).
			ValueInputOption("USER_ENTERED").
			Context(ctx).Do()
		return classify(err)
	}); err != nil {
		return fmt.Errorf("write upcoming bookings: %w", err)
	}
	r.log.Info("Upcoming bookings written", "rows", len(bookings))
	return nil
}

// EnsureTemplate creates any missing worksheets and writes their header
// rows, so a brand new spreadsheet is usable after one command.
func (r *SheetsRepository) EnsureTemplate(ctx context.Context) error {
	var meta *sheets.Spreadsheet
	if err := retry.Do(ctx, r.policy, func() error {
		var err error
		meta, err = r.svc.Spreadsheets.Get(r.sheetID).Context(ctx).Do()
		return classify(err)
	}); err != nil {
		return fmt.Errorf("inspect spreadsheet: %w", err)
	}

	existing := map[string]bool{}
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for title := range sheetHeaders {
		if existing[title] {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		})
		r.log.Info("Creating worksheet", "title", title)
	}
	if len(requests) > 0 {
		if err := retry.Do(ctx, r.policy, func() error {
			_, err := r.svc.Spreadsheets.
				BatchUpdate(r.sheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
				Context(ctx).Do()
			return classify(err)
		}); err != nil {
			return fmt.Errorf("create worksheets: %w", err)
		}
	}

	for title, headers := range sheetHeaders {
		if existing[title] {
			continue
		}
		vr := &sheets.ValueRange{Values: [][]interface{}{toRow(headers)}}
		if err := retry.Do(ctx, r.policy, func() error {
			_, err := r.svc.Spreadsheets.Values.
				Update(r.sheetID, fmt.Sprintf("%s!A1", title), vr).
				ValueInputOption("USER_ENTERED").
				Context(ctx).Do()
			return classify(err)
		}); err != nil {
			return fmt.Errorf("write %s header: %w", title, err)
		}
	}
	return nil
}

func parseAuditTime(s string) (time.Time, error) {
	return time.Parse(auditTimeLayout, s)
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
