package fetch

import (
	"testing"

	"courtbook-service/internal/domain/entity"
)

var testAccount = entity.Account{Name: "Bruce", Email: "bruce@example.org"}

func TestParseBookings(t *testing.T) {
	t.Parallel()

	html := `<html><body><div class="content-main">
		<div class="booking-column">12/08/2026</div>
		<div class="booking-column">Lincoln's Inn Fields Tennis Court 2</div>
		<div class="booking-column">Sat 26/09/2026 at 14:00</div>
		<div class="booking-column">13/08/2026</div>
		<div class="booking-column">Lincoln's Inn Fields Tennis Court 2</div>
		<div class="booking-column">Sat 26/9/2026 at 8:00</div>
	</div></body></html>`

	bookings, err := parseBookings(html, testAccount)
	if err != nil {
		t.Fatalf("parseBookings() error = %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("parsed %d bookings, want 2", len(bookings))
	}

	first := bookings[0]
	if first.Facility != "Lincoln's Inn Fields Tennis" {
		t.Errorf("Facility = %q", first.Facility)
	}
	if first.Court != "Court 2" {
		t.Errorf("Court = %q, want Court 2", first.Court)
	}
	if first.Date != "26/09/2026" || first.Time != "14:00" {
		t.Errorf("Date/Time = %q %q, want 26/09/2026 14:00", first.Date, first.Time)
	}
	if first.BookedOn != "12/08/2026" {
		t.Errorf("BookedOn = %q", first.BookedOn)
	}
	if first.Email != testAccount.Email {
		t.Errorf("Email = %q", first.Email)
	}

	if bookings[1].Time != "8:00" {
		t.Errorf("unpadded time = %q, want 8:00", bookings[1].Time)
	}
}

func TestParseBookingsEmptyDashboard(t *testing.T) {
	t.Parallel()

	html := `<html><body><div class="content-main">
		You are not booked onto any courses or sessions.
	</div></body></html>`

	bookings, err := parseBookings(html, testAccount)
	if err != nil {
		t.Fatalf("parseBookings() error = %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("parsed %d bookings from an empty dashboard", len(bookings))
	}
}

func TestParseBookingsSkipsIncompleteGroups(t *testing.T) {
	t.Parallel()

	// A trailing partial triplet must not panic or produce a row.
	html := `<html><body><div class="content-main">
		<div class="booking-column">12/08/2026</div>
		<div class="booking-column">Swimming Pool Lane</div>
		<div class="booking-column">no date here</div>
		<div class="booking-column">13/08/2026</div>
	</div></body></html>`

	bookings, err := parseBookings(html, testAccount)
	if err != nil {
		t.Fatalf("parseBookings() error = %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("parsed %d bookings, want 0 (no session date)", len(bookings))
	}
}

func TestParseFacility(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		facility string
		court    string
	}{
		{"Lincoln's Inn Fields Tennis Court 2", "Lincoln's Inn Fields Tennis", "Court 2"},
		{"Swimming Pool", "Swimming Pool", ""},
		{"Tennis Court 10", "Tennis", "Court 10"},
	}
	for _, tc := range cases {
		facility, court := parseFacility(tc.in)
		if facility != tc.facility || court != tc.court {
			t.Errorf("parseFacility(%q) = %q, %q; want %q, %q", tc.in, facility, court, tc.facility, tc.court)
		}
	}
}

func TestSortByDateDesc(t *testing.T) {
	t.Parallel()

	bookings := []entity.UpcomingBooking{
		{Date: "01/09/2026"},
		{Date: "26/09/2026"},
		{Date: "5/9/2026"},
	}
	sortByDateDesc(bookings)
	want := []string{"26/09/2026", "5/9/2026", "01/09/2026"}
	for i, w := range want {
		if bookings[i].Date != w {
			t.Errorf("bookings[%d].Date = %q, want %q", i, bookings[i].Date, w)
		}
	}
}
