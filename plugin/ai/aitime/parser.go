package aitime

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date patterns.
var (
	// Weekday references; "下" (next week) must be checked before the bare form.
	nextWeekdayPattern = regexp.MustCompile(`下(?:個)?(?:星期|週|禮拜)([一二三四五六日天])`)
	thisWeekdayPattern = regexp.MustCompile(`(?:這|本|今個|呢個)(?:個)?(?:星期|週|禮拜)([一二三四五六日天])`)
	namedWeekdayRegexp = regexp.MustCompile(`(?:星期|週|禮拜)([一二三四五六日天])`)
)

// relativeDayOffsets maps relative-day keywords to day offsets, in priority order.
// "大後天" must precede "後天".
var relativeDayOffsets = []struct {
	keyword string
	offset  int
}{
	{"大後天", 3},
	{"後天", 2},
	{"明天", 1},
	{"明日", 1},
	{"聽日", 1},
	{"今天", 0},
	{"今日", 0},
	{"今晚", 0},
}

// weekdayNames maps Chinese weekday characters to time.Weekday.
var weekdayNames = map[string]time.Weekday{
	"一": time.Monday,
	"二": time.Tuesday,
	"三": time.Wednesday,
	"四": time.Thursday,
	"五": time.Friday,
	"六": time.Saturday,
	"日": time.Sunday,
	"天": time.Sunday,
}

// absoluteDatePatterns are tried in order; the first one that yields a real
// calendar date wins. Indices point at capture groups; 0 means "use base year".
var absoluteDatePatterns = []struct {
	name                      string
	re                        *regexp.Regexp
	yearIdx, monthIdx, dayIdx int
}{
	{
		name:    "year-month-day",
		re:      regexp.MustCompile(`(\d{4})\s*年\s*(` + numeralToken + `)\s*月\s*(` + numeralToken + `)\s*[日號]`),
		yearIdx: 1, monthIdx: 2, dayIdx: 3,
	},
	{
		name:     "month-day",
		re:       regexp.MustCompile(`(` + numeralToken + `)\s*月\s*(` + numeralToken + `)\s*[日號]`),
		monthIdx: 1, dayIdx: 2,
	},
	{
		name:    "hyphenated",
		re:      regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
		yearIdx: 1, monthIdx: 2, dayIdx: 3,
	},
	{
		name:    "day/month/year",
		re:      regexp.MustCompile(`(?:^|[^\d/])(\d{1,2})/(\d{1,2})/(\d{4})`),
		dayIdx:  1, monthIdx: 2, yearIdx: 3,
	},
	{
		name:   "day/month",
		re:     regexp.MustCompile(`(?:^|[^\d/])(\d{1,2})/(\d{1,2})(?:$|[^\d/])`),
		dayIdx: 1, monthIdx: 2,
	},
	{
		name:    "year/month/day",
		re:      regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`),
		yearIdx: 1, monthIdx: 2, dayIdx: 3,
	},
}

// Extractor resolves the date and time-of-day mentioned in a booking sentence.
// It is stateless apart from its configuration and safe for concurrent use.
type Extractor struct {
	location *time.Location
	logger   *slog.Logger
}

var _ TimeExtractor = (*Extractor)(nil)

// NewExtractor creates an extractor anchored to the given civil timezone.
func NewExtractor(location *time.Location, logger *slog.Logger) *Extractor {
	if location == nil {
		location = time.FixedZone("UTC+8", 8*60*60)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		location: location,
		logger:   logger,
	}
}

// Location returns the civil timezone of the extractor.
func (e *Extractor) Location() *time.Location {
	return e.location
}

// Extract implements TimeExtractor.
func (e *Extractor) Extract(text string, now time.Time) (TimeRange, bool) {
	result := e.ExtractDetailed(text, now)
	return result.Range, result.Found
}

// ExtractDetailed runs the full pipeline and reports which rules fired.
// It is a pure function of (text, now).
func (e *Extractor) ExtractDetailed(text string, now time.Time) Extraction {
	text = Normalize(text)
	now = now.In(e.location)

	base := now
	source := DateFromNow

	if date, ok := e.applyRelativeDay(text, now); ok {
		base = date
		source = DateFromRelative
	}

	// An explicit date overrides any relative keyword.
	if date, name, ok := e.matchAbsoluteDate(text, base); ok {
		e.crossCheckWeekday(text, date, name)
		base = date
		source = DateFromAbsolute
	}

	// Weekday names are blanked so "星期三三點" cannot read as the hour "三三".
	span, shape, ok := matchTimeOfDay(namedWeekdayRegexp.ReplaceAllString(text, " "))
	if !ok {
		return Extraction{DateSource: source}
	}

	y, m, d := base.Date()
	return Extraction{
		Range: TimeRange{
			Start: time.Date(y, m, d, 0, span.startMin, 0, 0, e.location),
			End:   time.Date(y, m, d, 0, span.endMin, 0, 0, e.location),
		},
		Found:      true,
		DateSource: source,
		Shape:      shape,
	}
}

// applyRelativeDay applies the first matching relative-day keyword or weekday reference.
func (e *Extractor) applyRelativeDay(text string, now time.Time) (time.Time, bool) {
	for _, rel := range relativeDayOffsets {
		if strings.Contains(text, rel.keyword) {
			return now.AddDate(0, 0, rel.offset), true
		}
	}

	if matches := nextWeekdayPattern.FindStringSubmatch(text); len(matches) > 1 {
		target := weekdayNames[matches[1]]
		return now.AddDate(0, 0, DaysUntilNext(now.Weekday(), target)), true
	}

	if matches := thisWeekdayPattern.FindStringSubmatch(text); len(matches) > 1 {
		target := weekdayNames[matches[1]]
		// Monday-based week: Monday = 0 ... Sunday = 6. A weekday already
		// behind us this week means the same weekday of the coming week.
		current := (int(now.Weekday()) + 6) % 7
		wanted := (int(target) + 6) % 7
		if wanted < current {
			wanted += 7
		}
		return now.AddDate(0, 0, wanted-current), true
	}

	return time.Time{}, false
}

// DaysUntilNext returns the days from current until the next target weekday.
// The same weekday always means one full week ahead, never today.
func DaysUntilNext(current, target time.Weekday) int {
	diff := (int(target) - int(current) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return diff
}

// matchAbsoluteDate returns the first pattern that yields a real calendar date.
// Impossible dates ("2月30日") skip to the next pattern.
func (e *Extractor) matchAbsoluteDate(text string, base time.Time) (time.Time, string, bool) {
	for _, p := range absoluteDatePatterns {
		matches := p.re.FindStringSubmatch(text)
		if matches == nil {
			continue
		}

		year := base.Year()
		if p.yearIdx > 0 {
			y, err := strconv.Atoi(matches[p.yearIdx])
			if err != nil {
				continue
			}
			year = y
		}
		month := ToInt(matches[p.monthIdx])
		day := ToInt(matches[p.dayIdx])
		if !validDate(year, month, day) {
			continue
		}

		return time.Date(year, time.Month(month), day,
			base.Hour(), base.Minute(), 0, 0, e.location), p.name, true
	}
	return time.Time{}, "", false
}

// crossCheckWeekday logs when the sentence names a weekday that disagrees with the explicit date.
// The explicit date stays authoritative.
func (e *Extractor) crossCheckWeekday(text string, date time.Time, pattern string) {
	matches := namedWeekdayRegexp.FindStringSubmatch(text)
	if len(matches) < 2 {
		return
	}
	named := weekdayNames[matches[1]]
	if named != date.Weekday() {
		e.logger.Warn("named weekday disagrees with explicit date, keeping date",
			"date", date.Format("2006-01-02"),
			"pattern", pattern,
			"named_weekday", named.String(),
			"actual_weekday", date.Weekday().String(),
		)
	}
}

func validDate(year, month, day int) bool {
	if year < 1970 || month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysIn(year, time.Month(month))
}

// daysIn returns the number of days in the month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
