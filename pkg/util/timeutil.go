package util

import (
	"strings"
	"time"
)

var monthLayouts = []string{"2006-01", "2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseMonth reads a billing month written as YYYY-MM, a date or a timestamp
// and returns the first instant of that month in UTC.
func ParseMonth(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range monthLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
