// Package aitime resolves the date and time-of-day named in a Chinese booking
// sentence against a caller-supplied "now" in a fixed civil timezone.
package aitime

import (
	"time"
)

// TimeExtractor defines the local, deterministic time extraction contract.
// Consumers: schedule.Resolver
type TimeExtractor interface {
	// Extract returns the start/end instants named in text, anchored to now.
	// ok is false when no explicit time-of-day was found; no default is invented.
	Extract(text string, now time.Time) (TimeRange, bool)
}

// TimeRange represents a half-open time range [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsZero reports whether the range has not been set.
func (r TimeRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Valid reports whether the range is set and End is after Start.
func (r TimeRange) Valid() bool {
	return !r.Start.IsZero() && r.End.After(r.Start)
}

// DateSource records which rule produced the calendar date of an extraction.
type DateSource int

const (
	// DateFromNow means no date words were found and the date of "now" was used.
	DateFromNow DateSource = iota
	// DateFromRelative means a relative-day keyword or weekday reference was applied.
	DateFromRelative
	// DateFromAbsolute means an explicit calendar date was found in the text.
	DateFromAbsolute
)

func (s DateSource) String() string {
	switch s {
	case DateFromRelative:
		return "relative"
	case DateFromAbsolute:
		return "absolute"
	default:
		return "now"
	}
}

// Extraction is the detailed result of Extractor.ExtractDetailed.
type Extraction struct {
	Range      TimeRange
	Found      bool
	DateSource DateSource
	// Shape names the time-of-day pattern that matched, empty when Found is false.
	Shape string
}
