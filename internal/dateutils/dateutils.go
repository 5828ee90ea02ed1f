// Package dateutils handles the date formats bank exports use and the
// month-window arithmetic budget reporting needs.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// LayoutISO is the canonical date form used in storage and dedup keys.
const LayoutISO = "2006-01-02"

// commonLayouts are tried in order when parsing an export cell. ISO first
// because re-imports of our own output are the most common case.
var commonLayouts = []string{
	LayoutISO,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses a raw date cell against the known export layouts.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range commonLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// ToISO formats a time as the canonical date string.
func ToISO(t time.Time) string {
	return t.Format(LayoutISO)
}

// MonthStart returns midnight on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// LastFullMonths returns the window covering the n complete months before
// the month containing now. The end is the last instant before the
// current month begins.
func LastFullMonths(now time.Time, n int) (start, end time.Time) {
	if n < 1 {
		n = 1
	}
	end = MonthStart(now)
	start = end.AddDate(0, -n, 0)
	return start, end
}

// MonthsSpanned counts calendar months touched by the window, at least 1.
// A window from mid-January to mid-March spans three months.
func MonthsSpanned(start, end time.Time) int {
	if end.Before(start) {
		return 1
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}
