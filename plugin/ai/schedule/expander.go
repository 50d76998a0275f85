package schedule

import (
	"time"

	"github.com/hrygo/venuebook/plugin/ai/aitime"
)

const (
	// DefaultMaxOccurrences is the series length when the caller does not choose one.
	DefaultMaxOccurrences = 8
	// MaxOccurrencesCap is the hard upper bound on any expansion.
	MaxOccurrencesCap = 12
)

// Occurrence is one concrete dated instance of a recurring booking.
type Occurrence struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ClampOccurrences bounds max to [1, MaxOccurrencesCap], substituting the default for 0.
func ClampOccurrences(max int) int {
	switch {
	case max <= 0:
		return DefaultMaxOccurrences
	case max > MaxOccurrencesCap:
		return MaxOccurrencesCap
	}
	return max
}

// ExpandRecurrence generates the bounded, ordered occurrences of r starting from
// [start, end). Every occurrence keeps the original duration. A weekly
// recurrence with a target weekday begins strictly after start.
func ExpandRecurrence(start, end time.Time, r *Recurrence, max int) []Occurrence {
	if r == nil || !end.After(start) {
		return nil
	}
	max = ClampOccurrences(max)
	count := max
	if r.Count > 0 && r.Count < max {
		count = r.Count
	}
	duration := end.Sub(start)

	occurrences := make([]Occurrence, 0, count)
	// Monthly anchors can fall before start in the first month; those are skipped.
	for i := 0; len(occurrences) < count && i <= count; i++ {
		s, ok := r.nth(start, i)
		if !ok {
			break
		}
		if s.Before(start) {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			Index: len(occurrences),
			Start: s,
			End:   s.Add(duration),
		})
	}
	return occurrences
}

// nth returns the start of occurrence i.
func (r *Recurrence) nth(start time.Time, i int) (time.Time, bool) {
	switch r.Kind {
	case RecurrenceWeekly:
		first := start
		if r.TargetWeekday != nil {
			first = start.AddDate(0, 0, aitime.DaysUntilNext(start.Weekday(), *r.TargetWeekday))
		}
		return first.AddDate(0, 0, 7*i), true

	case RecurrenceDaily, RecurrenceConsecutiveDays:
		return start.AddDate(0, 0, i), true

	case RecurrenceAlternateDay:
		return start.AddDate(0, 0, 2*i), true

	case RecurrenceEveryNDays:
		step := r.Interval
		if step < 1 {
			step = 1
		}
		return start.AddDate(0, 0, step*i), true

	case RecurrenceMonthly:
		day := start.Day()
		if r.MonthDay > 0 {
			day = r.MonthDay
		}
		return monthDay(start, i, day), true

	case RecurrenceMonthlyNthWeekday:
		if r.TargetWeekday == nil {
			return time.Time{}, false
		}
		return nthWeekdayOfMonth(start, i, r.Nth, *r.TargetWeekday), true

	case RecurrenceFuturePeriods:
		switch r.Unit {
		case UnitDay:
			return start.AddDate(0, 0, i), true
		case UnitMonth:
			return monthDay(start, i, start.Day()), true
		default:
			return start.AddDate(0, 0, 7*i), true
		}
	}
	return time.Time{}, false
}

// monthDay returns start's clock on the given day of the month offset months
// later, clamped to the last day of short months.
func monthDay(start time.Time, offset, day int) time.Time {
	y, m, _ := start.Date()
	first := time.Date(y, m+time.Month(offset), 1, start.Hour(), start.Minute(), start.Second(), 0, start.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// nthWeekdayOfMonth returns the nth target weekday of the month offset months
// after start. A fifth weekday that does not exist falls back to the last one.
func nthWeekdayOfMonth(start time.Time, offset, nth int, target time.Weekday) time.Time {
	first := monthDay(start, offset, 1)
	d := first.AddDate(0, 0, (int(target)-int(first.Weekday())+7)%7)
	for k := 1; k < nth; k++ {
		next := d.AddDate(0, 0, 7)
		if next.Month() != first.Month() {
			break
		}
		d = next
	}
	return d
}
