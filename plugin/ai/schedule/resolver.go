package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/venuebook/internal/venue"
	"github.com/hrygo/venuebook/plugin/ai/aitime"
)

// DefaultSuggestionConfidence is assumed when a suggestion carries no confidence.
const DefaultSuggestionConfidence = 0.8

// Suggestion is an untrusted parse produced by the external collaborator.
// Zero times mean the collaborator did not supply them.
type Suggestion struct {
	Venue      string
	Start      time.Time
	End        time.Time
	Purpose    string
	Confidence float64
}

// Suggester obtains a Suggestion for a sentence. Errors are never fatal to
// resolution.
type Suggester interface {
	Suggest(ctx context.Context, text string, now time.Time) (*Suggestion, error)
}

// Intent is the structured result of resolving one sentence.
type Intent struct {
	Text       string       `json:"text"`
	Venue      *venue.Venue `json:"venue,omitempty"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	Purpose    Purpose      `json:"purpose"`
	Confidence float64      `json:"confidence"`
	Recurrence *Recurrence  `json:"recurrence,omitempty"`
	Provenance Provenance   `json:"provenance"`

	// VenueMatch is how the venue was found; DateSource is which date rule applied locally.
	VenueMatch venue.MatchKind   `json:"venueMatch,omitempty"`
	DateSource aitime.DateSource `json:"-"`
}

// HasTime reports whether the time range came from a parse rather than the fallback.
func (i *Intent) HasTime() bool {
	return i.Provenance != ProvenanceDefault && i.End.After(i.Start)
}

// Recurring reports whether the intent expands into a series.
func (i *Intent) Recurring() bool {
	return i.Recurrence != nil
}

// Resolver turns sentences into booking intents. It is safe for concurrent use.
type Resolver struct {
	catalog        *venue.Catalog
	extractor      *aitime.Extractor
	suggester      Suggester
	logger         *slog.Logger
	maxOccurrences int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSuggester attaches an external collaborator.
func WithSuggester(s Suggester) ResolverOption {
	return func(r *Resolver) { r.suggester = s }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithMaxOccurrences sets the series length, clamped to MaxOccurrencesCap.
func WithMaxOccurrences(n int) ResolverOption {
	return func(r *Resolver) { r.maxOccurrences = ClampOccurrences(n) }
}

// NewResolver creates a Resolver over the catalog and extractor.
func NewResolver(catalog *venue.Catalog, extractor *aitime.Extractor, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog:        catalog,
		extractor:      extractor,
		logger:         slog.Default(),
		maxOccurrences: DefaultMaxOccurrences,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxOccurrences returns the configured series length.
func (r *Resolver) MaxOccurrences() int {
	return r.maxOccurrences
}

// Resolve builds an intent for text as of now. It never fails: a missing or
// misbehaving suggester degrades to the local parse.
func (r *Resolver) Resolve(ctx context.Context, text string, now time.Time) *Intent {
	now = now.In(r.extractor.Location())
	intent := &Intent{Text: text}

	localVenue, kind, venueFound := r.catalog.MatchText(text)
	extraction := r.extractor.ExtractDetailed(text, now)
	intent.DateSource = extraction.DateSource
	intent.Recurrence = DetectRecurrence(text)

	var local *aitime.TimeRange
	if extraction.Found {
		rng := extraction.Range
		if intent.Recurrence != nil {
			rng = rollForward(rng, now)
		}
		local = &rng
	}

	suggestion := r.suggest(ctx, text, now)
	var external *aitime.TimeRange
	if suggestion != nil && !suggestion.Start.IsZero() {
		rng := aitime.TimeRange{Start: suggestion.Start.In(now.Location()), End: suggestion.End}
		if rng.End.IsZero() {
			rng.End = rng.Start.Add(DefaultFallbackDuration)
		}
		rng.End = rng.End.In(now.Location())
		external = &rng
	}

	chosen := mergeTimes(now, local, external)
	rng := chosen.timeRange()
	intent.Start, intent.End = rng.Start, rng.End
	intent.Provenance = chosen.provenance()

	// The suggested venue is re-resolved through the catalog; the text scan is the fallback.
	if suggestion != nil && suggestion.Venue != "" {
		if v, k := r.catalog.FindByNameKind(suggestion.Venue); k != venue.MatchNone {
			intent.Venue, intent.VenueMatch = &v, k
		}
	}
	if intent.Venue == nil && venueFound {
		intent.Venue, intent.VenueMatch = &localVenue, kind
	}

	purposeText := text
	if intent.Venue != nil {
		purposeText = r.catalog.StripMentions(text, *intent.Venue)
	}
	intent.Purpose = ExtractPurpose(purposeText)
	if intent.Purpose.Category == PurposeGeneral && suggestion != nil && suggestion.Purpose != "" {
		intent.Purpose.Label = suggestion.Purpose
	}

	intent.Confidence = r.confidence(intent, suggestion)

	r.logger.Debug("resolved booking intent",
		"provenance", intent.Provenance,
		"venue_found", intent.Venue != nil,
		"date_source", extraction.DateSource.String(),
		"time_shape", extraction.Shape,
		"recurring", intent.Recurring(),
		"confidence", intent.Confidence,
	)
	return intent
}

// Occurrences expands a recurring intent; a single booking yields one occurrence.
func (r *Resolver) Occurrences(intent *Intent) []Occurrence {
	if intent == nil || !intent.HasTime() {
		return nil
	}
	if intent.Recurrence == nil {
		return []Occurrence{{Index: 0, Start: intent.Start, End: intent.End}}
	}
	return ExpandRecurrence(intent.Start, intent.End, intent.Recurrence, r.maxOccurrences)
}

func (r *Resolver) suggest(ctx context.Context, text string, now time.Time) *Suggestion {
	if r.suggester == nil {
		return nil
	}
	s, err := r.suggester.Suggest(ctx, text, now)
	if err != nil {
		r.logger.Warn("external suggestion unavailable, using local parse", "error", err)
		return nil
	}
	return s
}

// confidence scores the intent. It is 0 without both a venue and a parsed time;
// otherwise it is at least 0.7 and at least the suggestion's own confidence.
func (r *Resolver) confidence(intent *Intent, s *Suggestion) float64 {
	if intent.Venue == nil || !intent.HasTime() {
		return 0
	}

	score := 0.6
	if intent.DateSource != aitime.DateFromNow {
		score += 0.2
	}
	if intent.Purpose.Category != PurposeGeneral {
		score += 0.2
	}

	floor := 0.7
	if s != nil && s.Confidence > floor {
		floor = s.Confidence
	}
	if score < floor {
		score = floor
	}
	if score > 1 {
		score = 1
	}
	return score
}

// rollForward moves a range that already started forward by whole days until it
// starts after now.
func rollForward(r aitime.TimeRange, now time.Time) aitime.TimeRange {
	if days := int(now.Sub(r.Start).Hours() / 24); days > 1 {
		r.Start = r.Start.AddDate(0, 0, days-1)
		r.End = r.End.AddDate(0, 0, days-1)
	}
	for !r.Start.After(now) {
		r.Start = r.Start.AddDate(0, 0, 1)
		r.End = r.End.AddDate(0, 0, 1)
	}
	return r
}
