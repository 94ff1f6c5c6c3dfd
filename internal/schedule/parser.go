// Package schedule normalizes the loosely-formatted day and time strings
// that arrive from the booking schedule worksheet and resolves which slots
// must be booked on a given weekday.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
)

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// NormalizeWeekday converts any common spelling of a weekday ("Tuesday",
// "tue", "TUES") to a time.Weekday.
func NormalizeWeekday(input string) (time.Weekday, error) {
	token := strings.ToLower(strings.TrimSpace(input))
	if token == "" {
		return 0, fmt.Errorf("weekday is empty")
	}
	day, ok := weekdayNames[token]
	if !ok {
		return 0, fmt.Errorf("unrecognized weekday %q", input)
	}
	return day, nil
}

// NormalizeTime converts a time in any of the accepted shapes to canonical
// four-digit 24-hour HHMM:
//
//	"8am"     -> "0800"
//	"12:30pm" -> "1230"
//	"800"     -> "0800"
//	"08:00"   -> "0800"
//	"8"       -> "0800"
//	"1600"    -> "1600"
//
// It is idempotent on its own output.
func NormalizeTime(input string) (string, error) {
	token := strings.ToLower(strings.TrimSpace(input))
	if token == "" {
		return "", fmt.Errorf("time is empty")
	}

	isPM := strings.Contains(token, "pm")
	isAM := strings.Contains(token, "am")

	var hour, minute int
	var err error

	if isPM || isAM {
		token = strings.NewReplacer("am", "", "pm", "", " ", "").Replace(token)
		hourPart, minutePart := token, "0"
		if i := strings.Index(token, ":"); i >= 0 {
			hourPart, minutePart = token[:i], token[i+1:]
		}
		hour, err = strconv.Atoi(hourPart)
		if err != nil {
			return "", fmt.Errorf("invalid time %q: %w", input, err)
		}
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return "", fmt.Errorf("invalid time %q: %w", input, err)
		}
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("invalid 12-hour clock hour %d in %q", hour, input)
		}
		// 12am is midnight, 12pm is noon.
		if isPM && hour != 12 {
			hour += 12
		}
		if isAM && hour == 12 {
			hour = 0
		}
	} else {
		token = strings.NewReplacer(":", "", ".", "", " ", "").Replace(token)
		switch len(token) {
		case 1, 2: // bare hour shorthand: "8" or "20"
			hour, err = strconv.Atoi(token)
			if err != nil {
				return "", fmt.Errorf("invalid time %q: %w", input, err)
			}
		case 3, 4: // "800" / "0800" / "1600"
			padded := token
			if len(padded) == 3 {
				padded = "0" + padded
			}
			hour, err = strconv.Atoi(padded[:2])
			if err != nil {
				return "", fmt.Errorf("invalid time %q: %w", input, err)
			}
			minute, err = strconv.Atoi(padded[2:])
			if err != nil {
				return "", fmt.Errorf("invalid time %q: %w", input, err)
			}
		default:
			return "", fmt.Errorf("unrecognized time format %q", input)
		}
	}

	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("hour out of range in %q: %d", input, hour)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("minute out of range in %q: %d", input, minute)
	}
	return fmt.Sprintf("%02d%02d", hour, minute), nil
}

// ParseSchedule normalizes raw worksheet rows into schedule entries.
// Malformed rows are logged and skipped so one bad cell cannot take the
// whole schedule down.
func ParseSchedule(rows []entity.ScheduleRow, log logger.Logger) []entity.ScheduleEntry {
	entries := make([]entity.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		day, err := NormalizeWeekday(row.Day)
		if err != nil {
			log.Warn("Skipping schedule row with bad weekday", "day", row.Day, "error", err)
			continue
		}
		hhmm, err := NormalizeTime(row.Time)
		if err != nil {
			log.Warn("Skipping schedule row with bad time", "time", row.Time, "error", err)
			continue
		}
		entries = append(entries, entity.ScheduleEntry{
			Weekday: day,
			Time:    hhmm,
			Notes:   row.Notes,
		})
	}
	return entries
}

// SlotsForWeekday returns the times that must be booked on the given
// weekday, in chronological order. Zero-padded 24-hour strings sort
// lexicographically into chronological order.
func SlotsForWeekday(entries []entity.ScheduleEntry, day time.Weekday) []string {
	var slots []string
	for _, e := range entries {
		if e.Weekday == day {
			slots = append(slots, e.Time)
		}
	}
	sort.Strings(slots)
	return slots
}

// Validate lints a normalized schedule for duplicates and times outside
// court opening hours. Issues are advisory.
func Validate(entries []entity.ScheduleEntry) []string {
	var issues []string
	seen := make(map[string]bool)
	for _, e := range entries {
		key := e.Weekday.String() + " " + e.Time
		if seen[key] {
			issues = append(issues, fmt.Sprintf("duplicate schedule entry: %s", key))
		}
		seen[key] = true

		hour, _ := strconv.Atoi(e.Time[:2])
		if hour < 6 || hour > 22 {
			issues = append(issues, fmt.Sprintf("unusual court time: %s %s", e.Weekday, e.Time))
		}
	}
	return issues
}

// FormatTime renders an HHMM time in 12-hour display form, e.g.
// "1600" -> "4:00 PM". Unparseable input is returned unchanged.
func FormatTime(hhmm string) string {
	if len(hhmm) != 4 {
		return hhmm
	}
	hour, err := strconv.Atoi(hhmm[:2])
	if err != nil {
		return hhmm
	}
	minute, err := strconv.Atoi(hhmm[2:])
	if err != nil {
		return hhmm
	}

	period := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		display = hour - 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, period)
}
