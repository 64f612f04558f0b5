package utils

import (
	"fmt"
	"time"
)

// LoadLocation resolves an IANA zone name, defaulting to UTC when empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", name, err)
	}
	return loc, nil
}

// Now returns the current time in loc.
func Now(loc *time.Location) time.Time {
	if loc == nil {
		return time.Now()
	}
	return time.Now().In(loc)
}

// TruncateMinute drops seconds and nanoseconds. It works on the absolute instant, so a
// time inside a repeated DST hour keeps its offset.
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLastDayOfMonth reports whether t falls on the final calendar day of its month.
func IsLastDayOfMonth(t time.Time) bool {
	return t.Day() == DaysIn(t.Year(), t.Month())
}
