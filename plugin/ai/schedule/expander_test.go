package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("UTC+8", 8*60*60)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, testZone)
}

func TestExpandRecurrence_WeeklyStartsStrictlyAfter(t *testing.T) {
	// Saturday 15:00 with a Wednesday target.
	start, end := at(2025, 6, 28, 15, 0), at(2025, 6, 28, 18, 0)
	r := &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: weekday(time.Wednesday)}

	occ := ExpandRecurrence(start, end, r, 8)
	require.Len(t, occ, 8)
	assert.Equal(t, at(2025, 7, 2, 15, 0), occ[0].Start)
	for i, o := range occ {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, time.Wednesday, o.Start.Weekday())
		assert.Equal(t, 3*time.Hour, o.End.Sub(o.Start))
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, o.Start.Sub(occ[i-1].Start))
		}
	}
}

func TestExpandRecurrence_WeeklySameWeekdaySkipsAWeek(t *testing.T) {
	start, end := at(2025, 7, 2, 15, 0), at(2025, 7, 2, 16, 0)
	r := &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: weekday(time.Wednesday)}

	occ := ExpandRecurrence(start, end, r, 3)
	require.Len(t, occ, 3)
	assert.Equal(t, at(2025, 7, 9, 15, 0), occ[0].Start)
}

func TestExpandRecurrence_Kinds(t *testing.T) {
	start, end := at(2025, 6, 29, 14, 0), at(2025, 6, 29, 16, 0)

	tests := []struct {
		name       string
		r          *Recurrence
		max        int
		wantLen    int
		wantSecond time.Time
	}{
		{"daily", &Recurrence{Kind: RecurrenceDaily, Interval: 1}, 8, 8, at(2025, 6, 30, 14, 0)},
		{"alternate", &Recurrence{Kind: RecurrenceAlternateDay, Interval: 2}, 8, 8, at(2025, 7, 1, 14, 0)},
		{"every 3 days", &Recurrence{Kind: RecurrenceEveryNDays, Interval: 3}, 8, 8, at(2025, 7, 2, 14, 0)},
		{"monthly", &Recurrence{Kind: RecurrenceMonthly}, 8, 8, at(2025, 7, 29, 14, 0)},
		{"consecutive below cap", &Recurrence{Kind: RecurrenceConsecutiveDays, Count: 5, Interval: 1}, 8, 5, at(2025, 6, 30, 14, 0)},
		{"consecutive above cap", &Recurrence{Kind: RecurrenceConsecutiveDays, Count: 20, Interval: 1}, 8, 8, at(2025, 6, 30, 14, 0)},
		{"future weeks", &Recurrence{Kind: RecurrenceFuturePeriods, Count: 4, Unit: UnitWeek}, 8, 4, at(2025, 7, 6, 14, 0)},
		{"future months", &Recurrence{Kind: RecurrenceFuturePeriods, Count: 3, Unit: UnitMonth}, 8, 3, at(2025, 7, 29, 14, 0)},
		{"cap is hard", &Recurrence{Kind: RecurrenceDaily, Interval: 1}, 100, MaxOccurrencesCap, at(2025, 6, 30, 14, 0)},
		{"zero max uses default", &Recurrence{Kind: RecurrenceDaily, Interval: 1}, 0, DefaultMaxOccurrences, at(2025, 6, 30, 14, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := ExpandRecurrence(start, end, tt.r, tt.max)
			require.Len(t, occ, tt.wantLen)
			assert.Equal(t, start, occ[0].Start)
			assert.Equal(t, tt.wantSecond, occ[1].Start)
			for i := 1; i < len(occ); i++ {
				assert.True(t, occ[i].Start.After(occ[i-1].Start), "occurrence %d not after %d", i, i-1)
				assert.Equal(t, 2*time.Hour, occ[i].End.Sub(occ[i].Start))
			}
		})
	}
}

func TestExpandRecurrence_MonthlyClampsShortMonths(t *testing.T) {
	start, end := at(2025, 1, 31, 10, 0), at(2025, 1, 31, 11, 0)
	occ := ExpandRecurrence(start, end, &Recurrence{Kind: RecurrenceMonthly}, 3)

	require.Len(t, occ, 3)
	assert.Equal(t, at(2025, 1, 31, 10, 0), occ[0].Start)
	assert.Equal(t, at(2025, 2, 28, 10, 0), occ[1].Start)
	assert.Equal(t, at(2025, 3, 31, 10, 0), occ[2].Start)
}

func TestExpandRecurrence_MonthlyDayBeforeStartBeginsNextMonth(t *testing.T) {
	start, end := at(2025, 6, 28, 10, 0), at(2025, 6, 28, 11, 0)
	occ := ExpandRecurrence(start, end, &Recurrence{Kind: RecurrenceMonthly, MonthDay: 15}, 3)

	require.Len(t, occ, 3)
	assert.Equal(t, at(2025, 7, 15, 10, 0), occ[0].Start)
	assert.Equal(t, at(2025, 8, 15, 10, 0), occ[1].Start)
	assert.Equal(t, at(2025, 9, 15, 10, 0), occ[2].Start)
	assert.Equal(t, 0, occ[0].Index)
}

func TestExpandRecurrence_MonthlyNthWeekday(t *testing.T) {
	start, end := at(2025, 7, 1, 15, 0), at(2025, 7, 1, 16, 0)
	r := &Recurrence{Kind: RecurrenceMonthlyNthWeekday, Nth: 2, TargetWeekday: weekday(time.Wednesday)}

	occ := ExpandRecurrence(start, end, r, 3)
	require.Len(t, occ, 3)
	assert.Equal(t, at(2025, 7, 9, 15, 0), occ[0].Start)
	assert.Equal(t, at(2025, 8, 13, 15, 0), occ[1].Start)
	assert.Equal(t, at(2025, 9, 10, 15, 0), occ[2].Start)
}

func TestExpandRecurrence_InvalidInput(t *testing.T) {
	start := at(2025, 6, 29, 14, 0)
	assert.Nil(t, ExpandRecurrence(start, start.Add(time.Hour), nil, 8))
	assert.Nil(t, ExpandRecurrence(start, start, &Recurrence{Kind: RecurrenceDaily}, 8))
}

func TestClampOccurrences(t *testing.T) {
	assert.Equal(t, DefaultMaxOccurrences, ClampOccurrences(0))
	assert.Equal(t, DefaultMaxOccurrences, ClampOccurrences(-3))
	assert.Equal(t, 5, ClampOccurrences(5))
	assert.Equal(t, MaxOccurrencesCap, ClampOccurrences(13))
}
