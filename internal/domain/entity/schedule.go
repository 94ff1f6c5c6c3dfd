package entity

import "time"

// ScheduleRow is a raw row from the booking schedule worksheet, before
// normalization. Day and Time are whatever the spreadsheet editor typed
// ("tue", "8am", "08:00").
type ScheduleRow struct {
	Day   string
	Time  string
	Notes string
}

// ScheduleEntry is a normalized schedule row: a weekday plus a canonical
// HHMM 24-hour time. Immutable once parsed.
type ScheduleEntry struct {
	Weekday time.Weekday
	Time    string // "0800", "1600"
	Notes   string
}
