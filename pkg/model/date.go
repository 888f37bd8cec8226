package model

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used throughout the system.
const DateLayout = "2006-01-02"

// Date is a calendar date in "YYYY-MM-DD" form.
//
// Dates are compared as strings, never as timestamps. ISO dates order
// lexicographically, and string comparison cannot drift across time zones
// the way midnight timestamps can.
type Date string

// ParseDate validates s as a "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// DateOf converts a time.Time to a Date, dropping the time of day.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the current date in UTC.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d > other }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d == "" }

// Time returns the date as a UTC time.Time at midnight.
// Invalid dates return the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the calendar date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Time().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the number of calendar days from a to b (b − a).
func DaysBetween(a, b Date) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// Contains reports whether d falls inside the range (inclusive).
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
