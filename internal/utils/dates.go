package utils

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate reads a calendar date. Full timestamps are accepted and
// truncated to their date in the zone they carry. Empty input yields nil.
func ParseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			y, m, d := t.Date()
			date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			return &date, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

// FormatDate formats t as YYYY-MM-DD, or "" when t is nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

// AddMonths moves t by n calendar months, clamping the day to the last day
// of the target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
