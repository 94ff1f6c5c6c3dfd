package entity

import "time"

// Account pairs a site login with the court that login is responsible for.
// One booking session owns exactly one Account.
type Account struct {
	Name     string
	Email    string
	Password string
	Court    string // display name, e.g. "Court 1"
	CourtURL string
}

// Complete reports whether the row carried everything a session needs.
// Incomplete rows are skipped with a warning rather than failing the run.
func (a Account) Complete() bool {
	return a.Name != "" && a.Email != "" && a.Password != "" && a.Court != "" && a.CourtURL != ""
}

// SlotRequest is one attempted booking: a court, a calendar date and an
// HHMM time. Created when a session's assigned slots are enumerated;
// its terminal outcome lands append-only in the session's result lists.
type SlotRequest struct {
	CourtURL string
	Date     time.Time // civil date in the site's timezone
	Time     string    // "1400"
}

// DateLabel is the date as the site encodes it in booking hrefs.
func (s SlotRequest) DateLabel() string {
	return s.Date.Format("02/01/2006")
}

// Outcome is the fixed-shape terminal record for one SlotRequest.
type Outcome struct {
	Account string
	Court   string
	Slot    SlotRequest
	Booked  bool
	Detail  string
}

// LogEntry is one audit row, appended to the booking log worksheet for
// every attempt regardless of result.
type LogEntry struct {
	Timestamp time.Time
	Email     string
	Court     string
	Date      string // DD/MM/YYYY
	Time      string // HHMM
	Status    string
	Detail    string
}

// UpcomingBooking is one row scraped from an account's "My Bookings" page.
type UpcomingBooking struct {
	Account  string
	Email    string
	BookedOn string // when the booking was placed, as the site displays it
	Facility string
	Court    string
	Date     string // DD/MM/YYYY
	Time     string // HH:MM
}
