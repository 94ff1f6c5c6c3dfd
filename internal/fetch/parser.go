// Package fetch scrapes each account's "My Bookings" page into the
// upcoming-bookings snapshot.
package fetch

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"courtbook-service/internal/domain/entity"
)

const noBookingsMessage = "You are not booked onto any courses or sessions."

var (
	dateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	timeRe = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// parseBookings extracts the bookings shown on one page of the dashboard.
// The markup lays booking data out as div.booking-column triplets: booked-on
// date, facility, then the session's date and time.
func parseBookings(html string, account entity.Account) ([]entity.UpcomingBooking, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	if strings.Contains(doc.Find("div.content-main").Text(), noBookingsMessage) {
		return nil, nil
	}

	var columns []string
	doc.Find("div.booking-column").Each(func(_ int, sel *goquery.Selection) {
		columns = append(columns, strings.TrimSpace(sel.Text()))
	})

	var bookings []entity.UpcomingBooking
	for i := 0; i+2 < len(columns); i += 3 {
		facility, court := parseFacility(columns[i+1])
		date, sessionTime := parseDateTime(columns[i+2])
		if facility == "" || date == "" {
			continue
		}
		bookings = append(bookings, entity.UpcomingBooking{
			Account:  account.Name,
			Email:    account.Email,
			BookedOn: columns[i],
			Facility: facility,
			Court:    court,
			Date:     date,
			Time:     sessionTime,
		})
	}
	return bookings, nil
}

// parseFacility splits "Lincoln's Inn Fields Tennis Court 2" into the
// facility name and a "Court N" label.
func parseFacility(info string) (facility, court string) {
	facility = strings.TrimSpace(info)
	lower := strings.ToLower(info)
	if !strings.Contains(lower, "court") {
		return facility, ""
	}
	parts := strings.Fields(info)
	for i, part := range parts {
		if strings.Contains(strings.ToLower(part), "court") && i+1 < len(parts) {
			court = "Court " + parts[i+1]
			break
		}
	}
	if idx := strings.Index(info, "Court"); idx >= 0 {
		facility = strings.TrimSpace(info[:idx])
	}
	return facility, court
}

// parseDateTime pulls the first DD/MM/YYYY date and HH:MM time out of the
// free-form session description.
func parseDateTime(info string) (date, sessionTime string) {
	return dateRe.FindString(info), timeRe.FindString(info)
}
