// Package timezone provides civil-date helpers for the booking service.
//
// Every booking is anchored to a single civil timezone; these helpers keep
// date arithmetic and formatting in that zone.
package timezone

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the civil date format used in reports and CLI arguments.
	DateLayout = "2006-01-02"
	// ClockLayout is the time-of-day format used in conflict reports.
	ClockLayout = "15:04"
	// DateTimeLayout is the local date-time format accepted on the command line.
	DateTimeLayout = "2006-01-02 15:04"
	// MonthLayout keys monthly usage totals.
	MonthLayout = "2006-01"
)

// FixedUTC8 is used when tzdata is unavailable.
var FixedUTC8 = time.FixedZone("UTC+8", 8*60*60)

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Hong_Kong").
// If the timezone is invalid, returns the fixed UTC+8 zone and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		return FixedUTC8, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return FixedUTC8, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// StartOfDay returns midnight of t's civil date in tz.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	y, m, d := t.In(tz).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tz)
}

// EndOfDay returns midnight of the next civil date in tz; the day is [StartOfDay, EndOfDay).
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	return StartOfDay(t, tz).AddDate(0, 0, 1)
}

// ParseDate parses a civil date in tz.
func ParseDate(s string, tz *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// ParseDateTime parses a local date-time ("2025-06-29 14:00" or RFC 3339) into tz.
func ParseDateTime(s string, tz *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(tz), nil
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want YYYY-MM-DD HH:MM: %w", s, err)
	}
	return t, nil
}

// FormatDate formats t's civil date in tz.
func FormatDate(t time.Time, tz *time.Location) string {
	return t.In(tz).Format(DateLayout)
}

// FormatClockRange formats [start, end) as "14:00-16:00". An end on a later
// civil date is marked with "+1".
func FormatClockRange(start, end time.Time, tz *time.Location) string {
	s, e := start.In(tz), end.In(tz)
	out := s.Format(ClockLayout) + "-" + e.Format(ClockLayout)
	if days := int(StartOfDay(e, tz).Sub(StartOfDay(s, tz)).Hours() / 24); days > 0 {
		out += fmt.Sprintf("(+%d)", days)
	}
	return out
}

// FormatRange formats [start, end) as "2025-06-29 14:00-16:00".
func FormatRange(start, end time.Time, tz *time.Location) string {
	return FormatDate(start, tz) + " " + FormatClockRange(start, end, tz)
}

// MonthKey returns the "2006-01" month of t in tz.
func MonthKey(t time.Time, tz *time.Location) string {
	return t.In(tz).Format(MonthLayout)
}
