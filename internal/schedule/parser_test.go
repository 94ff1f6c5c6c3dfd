package schedule

import (
	"reflect"
	"testing"
	"time"

	"courtbook-service/internal/domain/entity"
	"courtbook-service/pkg/logger"
)

func TestNormalizeWeekday(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  time.Weekday
	}{
		{"Tuesday", time.Tuesday},
		{"tue", time.Tuesday},
		{"tues", time.Tuesday},
		{"THURSDAY", time.Thursday},
		{"thurs", time.Thursday},
		{"sat", time.Saturday},
		{"sun", time.Sunday},
		{" fri ", time.Friday},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeWeekday(test.input)
			if err != nil {
				t.Fatalf("NormalizeWeekday(%q): %v", test.input, err)
			}
			if got != test.want {
				t.Errorf("NormalizeWeekday(%q) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestNormalizeWeekdayRejectsGarbage(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "someday", "tu", "7"} {
		if _, err := NormalizeWeekday(input); err == nil {
			t.Errorf("NormalizeWeekday(%q): expected error", input)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"8am", "0800"},
		{"800", "0800"},
		{"08:00", "0800"},
		{"4pm", "1600"},
		{"16:00", "1600"},
		{"12am", "0000"},
		{"12pm", "1200"},
		{"12:30am", "0030"},
		{"12:30pm", "1230"},
		{"8", "0800"},
		{"20", "2000"},
		{"9.15", "0915"},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeTime(test.input)
			if err != nil {
				t.Fatalf("NormalizeTime(%q): %v", test.input, err)
			}
			if got != test.want {
				t.Errorf("NormalizeTime(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestNormalizeTimeIdempotent(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"8am", "12pm", "16:00", "800", "2359"} {
		once, err := NormalizeTime(input)
		if err != nil {
			t.Fatalf("NormalizeTime(%q): %v", input, err)
		}
		twice, err := NormalizeTime(once)
		if err != nil {
			t.Fatalf("NormalizeTime(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}

func TestNormalizeTimeRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "25:00", "2460", "13pm", "0am", "99", "banana"} {
		if _, err := NormalizeTime(input); err == nil {
			t.Errorf("NormalizeTime(%q): expected error", input)
		}
	}
}

func TestParseScheduleSkipsBadRows(t *testing.T) {
	t.Parallel()
	rows := []entity.ScheduleRow{
		{Day: "tue", Time: "8am", Notes: "Feb-Aug only"},
		{Day: "notaday", Time: "8am"},
		{Day: "sat", Time: "not a time"},
		{Day: "sat", Time: "1400", Notes: "All year"},
	}
	entries := ParseSchedule(rows, logger.NewNop())
	if len(entries) != 2 {
		t.Fatalf("ParseSchedule kept %d rows, want 2", len(entries))
	}
	if entries[0].Weekday != time.Tuesday || entries[0].Time != "0800" {
		t.Errorf("first entry = %+v, want Tuesday 0800", entries[0])
	}
	if entries[1].Weekday != time.Saturday || entries[1].Time != "1400" {
		t.Errorf("second entry = %+v, want Saturday 1400", entries[1])
	}
}

func TestSlotsForWeekdaySorted(t *testing.T) {
	t.Parallel()
	entries := []entity.ScheduleEntry{
		{Weekday: time.Saturday, Time: "1500"},
		{Weekday: time.Thursday, Time: "1800"},
		{Weekday: time.Saturday, Time: "1400"},
		{Weekday: time.Saturday, Time: "0900"},
	}
	got := SlotsForWeekday(entries, time.Saturday)
	want := []string{"0900", "1400", "1500"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SlotsForWeekday = %v, want %v", got, want)
	}
	if slots := SlotsForWeekday(entries, time.Monday); len(slots) != 0 {
		t.Errorf("SlotsForWeekday(Monday) = %v, want empty", slots)
	}
}

func TestFormatTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input, want string
	}{
		{"0800", "8:00 AM"},
		{"1600", "4:00 PM"},
		{"1200", "12:00 PM"},
		{"0000", "12:00 AM"},
		{"0915", "9:15 AM"},
		{"bad", "bad"},
	}
	for _, test := range tests {
		if got := FormatTime(test.input); got != test.want {
			t.Errorf("FormatTime(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestValidateFlagsDuplicates(t *testing.T) {
	t.Parallel()
	entries := []entity.ScheduleEntry{
		{Weekday: time.Saturday, Time: "1400"},
		{Weekday: time.Saturday, Time: "1400"},
		{Weekday: time.Tuesday, Time: "0300"},
	}
	issues := Validate(entries)
	if len(issues) != 2 {
		t.Fatalf("Validate returned %d issues, want 2: %v", len(issues), issues)
	}
}
