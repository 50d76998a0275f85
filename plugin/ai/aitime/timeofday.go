package aitime

import (
	"fmt"
	"regexp"
)

// period is a time-of-day word such as 上午 or 下午.
type period int

const (
	periodNone period = iota
	periodEarlyMorning
	periodMorning
	periodNoon
	periodAfternoon
	periodEvening
)

// periodWords maps period keywords to periods.
var periodWords = map[string]period{
	"凌晨": periodEarlyMorning,
	"清晨": periodEarlyMorning,
	"早上": periodMorning,
	"早晨": periodMorning,
	"朝早": periodMorning,
	"上午": periodMorning,
	"中午": periodNoon,
	"正午": periodNoon,
	"晏晝": periodNoon,
	"下午": periodAfternoon,
	"傍晚": periodEvening,
	"晚上": periodEvening,
	"夜晚": periodEvening,
	"夜間": periodEvening,
	"晚間": periodEvening,
	"今晚": periodEvening,
}

const (
	periodAlt = `凌晨|清晨|早上|早晨|朝早|上午|中午|正午|晏晝|下午|傍晚|晚上|夜晚|夜間|晚間|今晚`
	connector = `\s*(?:至|到|-|~|—|–)\s*`

	minutesPerDay = 24 * 60
	// defaultSingleDuration applies when only a start time is given.
	defaultSingleDuration = 2 * 60
)

var anyPeriodPattern = regexp.MustCompile(periodAlt)

// clockPattern matches a Chinese-style clock ("3點", "十點半", "2點30分", "三點一刻").
// Group names are prefixed so two clocks can share one expression.
func clockPattern(prefix string) string {
	return fmt.Sprintf(`(?P<%[1]s_h>%[2]s)\s*[點時](?:\s*(?:(?P<%[1]s_half>半)|(?P<%[1]s_q>[一二三])刻|(?P<%[1]s_m>%[2]s)\s*分?))?`,
		prefix, numeralToken)
}

// digitalPattern matches "14:00".
func digitalPattern(prefix string) string {
	return fmt.Sprintf(`(?P<%[1]s_h>\d{1,2}):(?P<%[1]s_cm>\d{2})`, prefix)
}

func periodGroup(name string) string {
	return `(?P<` + name + `>` + periodAlt + `)\s*`
}

func optionalPeriodGroup(name string) string {
	return `(?:` + periodGroup(name) + `)?`
}

// clockSpan is a resolved time-of-day range in minutes after midnight of the base date.
// endMin may exceed minutesPerDay for cross-midnight spans.
type clockSpan struct {
	startMin int
	endMin   int
}

type timeShape struct {
	name    string
	re      *regexp.Regexp
	resolve func(g groups, text string) (clockSpan, bool)
}

// timeShapes are tried in priority order; the first that both matches and
// resolves to a legal clock wins.
var timeShapes = []timeShape{
	{
		name:    "period-range",
		re:      regexp.MustCompile(periodGroup("sp") + clockPattern("s") + connector + clockPattern("e")),
		resolve: resolveInheritedRange,
	},
	{
		name:    "period-period-range",
		re:      regexp.MustCompile(periodGroup("sp") + clockPattern("s") + connector + periodGroup("ep") + clockPattern("e")),
		resolve: resolveExplicitRange,
	},
	{
		name:    "bare-range",
		re:      regexp.MustCompile(clockPattern("s") + connector + clockPattern("e")),
		resolve: resolveBareRange,
	},
	{
		name:    "period-single",
		re:      regexp.MustCompile(periodGroup("sp") + clockPattern("s")),
		resolve: resolveSingle,
	},
	{
		name:    "digital-range",
		re:      regexp.MustCompile(optionalPeriodGroup("sp") + digitalPattern("s") + connector + optionalPeriodGroup("ep") + digitalPattern("e")),
		resolve: resolveDigitalRange,
	},
	{
		name:    "digital-single",
		re:      regexp.MustCompile(optionalPeriodGroup("sp") + digitalPattern("s")),
		resolve: resolveSingle,
	},
	{
		name:    "bare-single",
		re:      regexp.MustCompile(clockPattern("s")),
		resolve: resolveBareSingle,
	},
}

// groups holds the named submatches of one regex match.
type groups map[string]string

// namedGroups returns the named submatches of every match of re, leftmost first.
func namedGroups(re *regexp.Regexp, text string) []groups {
	all := re.FindAllStringSubmatch(text, -1)
	names := re.SubexpNames()
	out := make([]groups, 0, len(all))
	for _, matches := range all {
		g := make(groups, len(matches))
		for i, name := range names {
			if name != "" && matches[i] != "" {
				g[name] = matches[i]
			}
		}
		out = append(out, g)
	}
	return out
}

// clock parses the clock captured under prefix.
func (g groups) clock(prefix string) (hour, minute int, ok bool) {
	hour, ok = ParseNumeral(g[prefix+"_h"])
	if !ok || hour > 24 {
		return 0, 0, false
	}

	switch {
	case g[prefix+"_half"] != "":
		minute = 30
	case g[prefix+"_q"] != "":
		minute = 15 * ToInt(g[prefix+"_q"])
	case g[prefix+"_m"] != "":
		minute, ok = ParseNumeral(g[prefix+"_m"])
	case g[prefix+"_cm"] != "":
		minute, ok = ParseNumeral(g[prefix+"_cm"])
	}
	if !ok || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func (g groups) period(name string) period {
	return periodWords[g[name]]
}

// matchTimeOfDay finds the first time-of-day shape in text. A match that does
// not resolve to a legal clock gives way to the next match of the same shape.
func matchTimeOfDay(text string) (clockSpan, string, bool) {
	for _, shape := range timeShapes {
		for _, g := range namedGroups(shape.re, text) {
			if span, ok := shape.resolve(g, text); ok {
				return span, shape.name, true
			}
		}
	}
	return clockSpan{}, "", false
}

// applyPeriod converts a 12-hour clock hour to 24-hour using the period word.
func applyPeriod(p period, hour int) int {
	switch p {
	case periodAfternoon:
		if hour < 12 {
			return hour + 12
		}
	case periodEvening:
		if hour < 12 {
			return hour + 12
		}
		if hour == 12 {
			return 24
		}
	case periodNoon:
		// 中午1點 is 13:00; 中午12點 stays 12:00.
		if hour >= 1 && hour <= 5 {
			return hour + 12
		}
	case periodEarlyMorning:
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// inferPeriod guesses a period from the hour-of-day band.
func inferPeriod(hour int) period {
	switch {
	case hour <= 6:
		return periodEarlyMorning
	case hour <= 11:
		return periodMorning
	case hour <= 18:
		return periodAfternoon
	default:
		return periodEvening
	}
}

// inheritedEnd resolves an end clock whose period was not stated. The end takes the
// first of the period-adjusted hour and hour+12 that lands after the start; when
// neither does, the end is the early-morning hour of the next day.
func inheritedEnd(p period, startMin, hour, minute int) int {
	if end := applyPeriod(p, hour)*60 + minute; end > startMin {
		return end
	}
	if hour < 12 {
		if end := (hour+12)*60 + minute; end > startMin {
			return end
		}
	}
	return hour*60 + minute + minutesPerDay
}

// explicitEnd resolves an end clock with its own period; an end at or before the
// start is pushed to the next day.
func explicitEnd(p period, startMin, hour, minute int) int {
	end := applyPeriod(p, hour)*60 + minute
	if end <= startMin {
		end += minutesPerDay
	}
	return end
}

func resolveInheritedRange(g groups, _ string) (clockSpan, bool) {
	sh, sm, ok := g.clock("s")
	if !ok {
		return clockSpan{}, false
	}
	eh, em, ok := g.clock("e")
	if !ok {
		return clockSpan{}, false
	}
	p := g.period("sp")
	start := applyPeriod(p, sh)*60 + sm
	return clockSpan{startMin: start, endMin: inheritedEnd(p, start, eh, em)}, true
}

func resolveExplicitRange(g groups, _ string) (clockSpan, bool) {
	sh, sm, ok := g.clock("s")
	if !ok {
		return clockSpan{}, false
	}
	eh, em, ok := g.clock("e")
	if !ok {
		return clockSpan{}, false
	}
	start := applyPeriod(g.period("sp"), sh)*60 + sm
	return clockSpan{startMin: start, endMin: explicitEnd(g.period("ep"), start, eh, em)}, true
}

// resolveBareRange handles "3點至6點" with no period next to the clock. A period
// word elsewhere in the sentence is used when present; otherwise the period is
// inferred, with short ranges (start 1-6, end 3-11) read as afternoon.
func resolveBareRange(g groups, text string) (clockSpan, bool) {
	sh, sm, ok := g.clock("s")
	if !ok {
		return clockSpan{}, false
	}
	eh, em, ok := g.clock("e")
	if !ok {
		return clockSpan{}, false
	}

	if word := anyPeriodPattern.FindString(text); word != "" {
		p := periodWords[word]
		start := applyPeriod(p, sh)*60 + sm
		return clockSpan{startMin: start, endMin: inheritedEnd(p, start, eh, em)}, true
	}

	if sh >= 1 && sh <= 6 && eh >= 3 && eh <= 11 {
		start := applyPeriod(periodAfternoon, sh)*60 + sm
		return clockSpan{startMin: start, endMin: explicitEnd(periodAfternoon, start, eh, em)}, true
	}

	p := inferPeriod(sh)
	start := applyPeriod(p, sh)*60 + sm
	return clockSpan{startMin: start, endMin: inheritedEnd(p, start, eh, em)}, true
}

func resolveDigitalRange(g groups, _ string) (clockSpan, bool) {
	sh, sm, ok := g.clock("s")
	if !ok {
		return clockSpan{}, false
	}
	eh, em, ok := g.clock("e")
	if !ok {
		return clockSpan{}, false
	}
	sp := g.period("sp")
	start := applyPeriod(sp, sh)*60 + sm
	if ep := g.period("ep"); ep != periodNone {
		return clockSpan{startMin: start, endMin: explicitEnd(ep, start, eh, em)}, true
	}
	if sp != periodNone {
		return clockSpan{startMin: start, endMin: inheritedEnd(sp, start, eh, em)}, true
	}
	return clockSpan{startMin: start, endMin: explicitEnd(periodNone, start, eh, em)}, true
}

func resolveSingle(g groups, _ string) (clockSpan, bool) {
	h, m, ok := g.clock("s")
	if !ok {
		return clockSpan{}, false
	}
	start := applyPeriod(g.period("sp"), h)*60 + m
	return clockSpan{startMin: start, endMin: start + defaultSingleDuration}, true
}

// resolveBareSingle handles a lone "3點". Without a period word, 1-6 o'clock is
// read as afternoon and everything else as written.
func resolveBareSingle(g groups, text string) (clockSpan, bool) {
	h, m, ok := g.clock("s")
	if !ok {
		return clockSpan{}, false
	}
	p := periodNone
	if word := anyPeriodPattern.FindString(text); word != "" {
		p = periodWords[word]
	} else if h >= 1 && h <= 6 {
		p = periodAfternoon
	}
	start := applyPeriod(p, h)*60 + m
	return clockSpan{startMin: start, endMin: start + defaultSingleDuration}, true
}
