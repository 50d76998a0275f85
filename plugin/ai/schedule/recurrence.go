// Package schedule turns a free-form booking sentence into a booking intent:
// recurrence detection and expansion, purpose classification, and the resolver
// that reconciles the local parse with an optional external suggestion.
package schedule

import (
	"regexp"
	"time"

	"github.com/hrygo/venuebook/plugin/ai/aitime"
)

// RecurrenceKind classifies a repetition phrase.
type RecurrenceKind string

const (
	RecurrenceWeekly            RecurrenceKind = "weekly"
	RecurrenceDaily             RecurrenceKind = "daily"
	RecurrenceAlternateDay      RecurrenceKind = "alternate_day"
	RecurrenceEveryNDays        RecurrenceKind = "every_n_days"
	RecurrenceMonthly           RecurrenceKind = "monthly"
	RecurrenceMonthlyNthWeekday RecurrenceKind = "monthly_nth_weekday"
	RecurrenceConsecutiveDays   RecurrenceKind = "consecutive_days"
	RecurrenceFuturePeriods     RecurrenceKind = "future_periods"
)

// PeriodUnit is the step unit of a future-periods recurrence.
type PeriodUnit string

const (
	UnitDay   PeriodUnit = "day"
	UnitWeek  PeriodUnit = "week"
	UnitMonth PeriodUnit = "month"
)

// Recurrence describes a detected repetition. Only the fields relevant to Kind are set.
type Recurrence struct {
	Kind          RecurrenceKind `json:"kind"`
	TargetWeekday *time.Weekday  `json:"targetWeekday,omitempty"`
	RawPhrase     string         `json:"rawPhrase"`

	// Interval is the day step for every-N-days.
	Interval int `json:"interval,omitempty"`
	// Count bounds consecutive-days and future-periods.
	Count int `json:"count,omitempty"`
	// MonthDay is the day-of-month for monthly; 0 keeps the start's day.
	MonthDay int `json:"monthDay,omitempty"`
	// Nth is the week ordinal for monthly-nth-weekday.
	Nth  int        `json:"nth,omitempty"`
	Unit PeriodUnit `json:"unit,omitempty"`
}

const (
	weekdayClass = `[一二三四五六日天]`
	weekWord     = `(?:星期|週|禮拜)`
	numeral      = `[0-9零〇一二兩两三四五六七八九十廿卅]`
)

// singleWeekQualifier names a specific week; it overrides any recurrence wording.
var singleWeekQualifier = regexp.MustCompile(`(?:這|本|下|今個|呢個)(?:個)?` + weekWord)

var recurrencePatterns = []struct {
	pattern *regexp.Regexp
	handler func(matches []string) *Recurrence
}{
	// 逢星期三 / 每週三
	{
		regexp.MustCompile(`(?:每|逢)(?:個)?` + weekWord + `(` + weekdayClass + `)`),
		func(matches []string) *Recurrence {
			wd, ok := parseWeekday(matches[1])
			if !ok {
				return nil
			}
			return &Recurrence{Kind: RecurrenceWeekly, TargetWeekday: &wd}
		},
	},
	// 每天 / 天天
	{
		regexp.MustCompile(`每天|每日|天天|日日|逢日`),
		func(_ []string) *Recurrence {
			return &Recurrence{Kind: RecurrenceDaily, Interval: 1}
		},
	},
	// 隔日
	{
		regexp.MustCompile(`隔日|隔天|每隔一[天日]`),
		func(_ []string) *Recurrence {
			return &Recurrence{Kind: RecurrenceAlternateDay, Interval: 2}
		},
	},
	// 每3天 / 每隔2天
	{
		regexp.MustCompile(`每(隔)?(` + numeral + `+)(?:個)?[天日]`),
		func(matches []string) *Recurrence {
			n, ok := aitime.ParseNumeral(matches[2])
			if !ok || n < 1 {
				return nil
			}
			if matches[1] != "" {
				n++
			}
			return &Recurrence{Kind: RecurrenceEveryNDays, Interval: n}
		},
	},
	// 每月第二個星期三; must precede the plain monthly form.
	{
		regexp.MustCompile(`每(?:個)?月(?:的)?第(` + numeral + `)(?:個)?` + weekWord + `(` + weekdayClass + `)`),
		func(matches []string) *Recurrence {
			nth, ok := aitime.ParseNumeral(matches[1])
			if !ok || nth < 1 || nth > 5 {
				return nil
			}
			wd, ok := parseWeekday(matches[2])
			if !ok {
				return nil
			}
			return &Recurrence{Kind: RecurrenceMonthlyNthWeekday, Nth: nth, TargetWeekday: &wd}
		},
	},
	// 每月 / 每月15號
	{
		regexp.MustCompile(`每(?:個)?月(?:的)?(?:(` + numeral + `{1,3})[日號])?`),
		func(matches []string) *Recurrence {
			r := &Recurrence{Kind: RecurrenceMonthly}
			if matches[1] != "" {
				day, ok := aitime.ParseNumeral(matches[1])
				if !ok || day < 1 || day > 31 {
					return nil
				}
				r.MonthDay = day
			}
			return r
		},
	},
	// 連續五天
	{
		regexp.MustCompile(`(?:連續|一連)(` + numeral + `+)(?:個)?[天日]`),
		func(matches []string) *Recurrence {
			n, ok := aitime.ParseNumeral(matches[1])
			if !ok || n < 1 {
				return nil
			}
			return &Recurrence{Kind: RecurrenceConsecutiveDays, Count: n, Interval: 1}
		},
	},
	// 未來四個星期
	{
		regexp.MustCompile(`(?:未來|接下來|之後)(` + numeral + `+)(?:個)?(星期|週|禮拜|月|天|日)`),
		func(matches []string) *Recurrence {
			n, ok := aitime.ParseNumeral(matches[1])
			if !ok || n < 1 {
				return nil
			}
			unit := UnitWeek
			switch matches[2] {
			case "月":
				unit = UnitMonth
			case "天", "日":
				unit = UnitDay
			}
			return &Recurrence{Kind: RecurrenceFuturePeriods, Count: n, Unit: unit}
		},
	},
}

// DetectRecurrence scans text for a repetition phrase. It returns nil when
// nothing matches or when the sentence names a specific week.
func DetectRecurrence(text string) *Recurrence {
	text = aitime.Normalize(text)
	if singleWeekQualifier.MatchString(text) {
		return nil
	}

	for _, p := range recurrencePatterns {
		matches := p.pattern.FindStringSubmatch(text)
		if matches == nil {
			continue
		}
		if r := p.handler(matches); r != nil {
			r.RawPhrase = matches[0]
			return r
		}
	}
	return nil
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch s {
	case "一":
		return time.Monday, true
	case "二":
		return time.Tuesday, true
	case "三":
		return time.Wednesday, true
	case "四":
		return time.Thursday, true
	case "五":
		return time.Friday, true
	case "六":
		return time.Saturday, true
	case "日", "天":
		return time.Sunday, true
	}
	return 0, false
}
