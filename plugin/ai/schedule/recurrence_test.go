package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekday(d time.Weekday) *time.Weekday { return &d }

func TestDetectRecurrence(t *testing.T) {
	tests := []struct {
		input    string
		expected *Recurrence
	}{
		{"逢星期三下午三點至六點借101號室開會", &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: weekday(time.Wednesday), RawPhrase: "逢星期三"}},
		{"每週一下午2點到4點預訂禮堂", &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: weekday(time.Monday), RawPhrase: "每週一"}},
		{"每周日早上用操场", &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: weekday(time.Sunday), RawPhrase: "每週日"}},
		{"每個禮拜五晚上7點", &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: weekday(time.Friday), RawPhrase: "每個禮拜五"}},
		{"每天早上8點借音樂室", &Recurrence{Kind: RecurrenceDaily, Interval: 1, RawPhrase: "每天"}},
		{"隔日下午練琴", &Recurrence{Kind: RecurrenceAlternateDay, Interval: 2, RawPhrase: "隔日"}},
		{"每3天借一次電腦室", &Recurrence{Kind: RecurrenceEveryNDays, Interval: 3, RawPhrase: "每3天"}},
		{"每隔兩天", &Recurrence{Kind: RecurrenceEveryNDays, Interval: 3, RawPhrase: "每隔兩天"}},
		{"每月第二個星期三開會", &Recurrence{Kind: RecurrenceMonthlyNthWeekday, Nth: 2, TargetWeekday: weekday(time.Wednesday), RawPhrase: "每月第二個星期三"}},
		{"每月15號下午", &Recurrence{Kind: RecurrenceMonthly, MonthDay: 15, RawPhrase: "每月15號"}},
		{"每個月開一次會", &Recurrence{Kind: RecurrenceMonthly, RawPhrase: "每個月"}},
		{"連續五天借禮堂", &Recurrence{Kind: RecurrenceConsecutiveDays, Count: 5, Interval: 1, RawPhrase: "連續五天"}},
		{"连续3天", &Recurrence{Kind: RecurrenceConsecutiveDays, Count: 3, Interval: 1, RawPhrase: "連續3天"}},
		{"未來四個星期都要用", &Recurrence{Kind: RecurrenceFuturePeriods, Count: 4, Unit: UnitWeek, RawPhrase: "未來四個星期"}},
		{"接下來3個月", &Recurrence{Kind: RecurrenceFuturePeriods, Count: 3, Unit: UnitMonth, RawPhrase: "接下來3個月"}},
		{"明天下午2點借101號室", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectRecurrence(tt.input))
		})
	}
}

func TestDetectRecurrence_SingleWeekQualifierSuppresses(t *testing.T) {
	inputs := []string{
		"下星期三下午三點借音樂室，以後每星期三都要",
		"這週五晚上7點在禮堂舉辦活動，逢星期五",
		"本週每天都要用",
		"下個禮拜一每日早上",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Nil(t, DetectRecurrence(input))
		})
	}
}

func TestDetectRecurrence_AfternoonIsNotNextWeek(t *testing.T) {
	r := DetectRecurrence("逢星期三下午三點")
	require.NotNil(t, r)
	assert.Equal(t, RecurrenceWeekly, r.Kind)
}
