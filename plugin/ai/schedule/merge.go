package schedule

import (
	"time"

	"github.com/hrygo/venuebook/plugin/ai/aitime"
)

// DefaultFallbackDuration is the length of the placeholder range used when
// neither parse produced a usable future time.
const DefaultFallbackDuration = 2 * time.Hour

// Provenance records where the resolved time range came from.
type Provenance string

const (
	ProvenanceLocal    Provenance = "local"
	ProvenanceExternal Provenance = "external"
	ProvenanceDefault  Provenance = "default"
)

// timeCandidate is one of localTime, externalTime or defaultTime.
type timeCandidate interface {
	timeRange() aitime.TimeRange
	provenance() Provenance
}

type localTime struct{ r aitime.TimeRange }

type externalTime struct{ r aitime.TimeRange }

type defaultTime struct{ r aitime.TimeRange }

func (c localTime) timeRange() aitime.TimeRange    { return c.r }
func (c externalTime) timeRange() aitime.TimeRange { return c.r }
func (c defaultTime) timeRange() aitime.TimeRange  { return c.r }

func (localTime) provenance() Provenance    { return ProvenanceLocal }
func (externalTime) provenance() Provenance { return ProvenanceExternal }
func (defaultTime) provenance() Provenance  { return ProvenanceDefault }

// usable reports whether r is a well-formed range starting strictly after now.
func usable(r aitime.TimeRange, now time.Time) bool {
	return r.Valid() && r.Start.After(now)
}

// mergeTimes picks between the local and external ranges. When both are usable
// the one starting closer to now wins, ties going to local; when neither is,
// the result is a default range starting at now.
func mergeTimes(now time.Time, local, external *aitime.TimeRange) timeCandidate {
	localOK := local != nil && usable(*local, now)
	externalOK := external != nil && usable(*external, now)

	switch {
	case localOK && externalOK:
		if external.Start.Before(local.Start) {
			return externalTime{*external}
		}
		return localTime{*local}
	case localOK:
		return localTime{*local}
	case externalOK:
		return externalTime{*external}
	default:
		return defaultTime{aitime.TimeRange{Start: now, End: now.Add(DefaultFallbackDuration)}}
	}
}
