package booking

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	aischedule "github.com/hrygo/venuebook/plugin/ai/schedule"
	bookingerrors "github.com/hrygo/venuebook/server/internal/errors"
	"github.com/hrygo/venuebook/server/internal/observability"
	"github.com/hrygo/venuebook/store"
)

// ParseResult is the resolved intent of a sentence plus the "can proceed" verdict.
type ParseResult struct {
	Intent      *aischedule.Intent      `json:"intent"`
	CanProceed  bool                    `json:"canProceed"`
	Missing     []string                `json:"missing,omitempty"`
	Examples    []string                `json:"examples,omitempty"`
	Occurrences []aischedule.Occurrence `json:"occurrences,omitempty"`
}

// BookResult is the outcome of booking from a sentence. Exactly one of
// Booking and Batch is set when the booking went ahead.
type BookResult struct {
	Parse   *ParseResult   `json:"parse"`
	Booking *store.Booking `json:"booking,omitempty"`
	Batch   *BatchResult   `json:"batch,omitempty"`
}

// Assistant books venues from natural-language sentences.
type Assistant struct {
	resolver *aischedule.Resolver
	service  *Service
	logger   *slog.Logger
}

// NewAssistant creates an assistant over the resolver and booking service.
func NewAssistant(resolver *aischedule.Resolver, service *Service) *Assistant {
	return &Assistant{
		resolver: resolver,
		service:  service,
		logger:   service.logger,
	}
}

// Parse resolves text as of the service clock. It never fails; an unusable
// sentence comes back with CanProceed false and the missing fields.
func (a *Assistant) Parse(ctx context.Context, text string) *ParseResult {
	rc := observability.NewRequestContext(a.logger, "assistant.parse")
	ctx, span := observability.StartSpan(ctx, "assistant.Parse")
	defer span.End()

	intent := a.resolver.Resolve(ctx, text, a.service.Now())
	observability.RecordIntent(string(intent.Provenance))
	if intent.Venue != nil {
		rc.VenueID = intent.Venue.ID
	}
	span.SetAttributes(
		attribute.String("provenance", string(intent.Provenance)),
		attribute.Float64("confidence", intent.Confidence),
		attribute.Bool("recurring", intent.Recurring()),
	)

	v := aischedule.ValidateIntent(intent)
	result := &ParseResult{
		Intent:     intent,
		CanProceed: v.CanProceed,
		Missing:    v.Missing,
		Examples:   v.Examples,
	}
	if intent.Recurring() {
		result.Occurrences = a.resolver.Occurrences(intent)
	}

	rc.Info("sentence parsed",
		slog.String("provenance", string(intent.Provenance)),
		slog.Bool("can_proceed", v.CanProceed),
		slog.Any("missing", v.Missing),
		slog.Int("occurrences", len(result.Occurrences)))
	return result
}

// Book parses text and books it: a series goes through CreateRecurring and
// anything else through Create. A sentence that cannot proceed returns a
// VALIDATION_FAILED error along with the parse result.
func (a *Assistant) Book(ctx context.Context, text, contact string) (*BookResult, error) {
	parsed := a.Parse(ctx, text)
	result := &BookResult{Parse: parsed}
	if !parsed.CanProceed {
		return result, bookingerrors.ValidationFailed(parsed.Missing)
	}

	intent := parsed.Intent
	if intent.Recurring() && len(parsed.Occurrences) > 0 {
		batch, err := a.service.CreateRecurring(ctx, &RecurringRequest{
			VenueID:        intent.Venue.ID,
			Occurrences:    parsed.Occurrences,
			RecurrenceKind: string(intent.Recurrence.Kind),
			Purpose:        intent.Purpose.Label,
			ContactInfo:    contact,
		})
		result.Batch = batch
		return result, err
	}

	b, err := a.service.Create(ctx, &CreateRequest{
		VenueID:     intent.Venue.ID,
		Start:       intent.Start,
		End:         intent.End,
		Purpose:     intent.Purpose.Label,
		ContactInfo: contact,
	})
	if err != nil {
		return result, err
	}
	result.Booking = b
	return result, nil
}

// MeteredSuggester records the latency and outcome of every suggestion call.
type MeteredSuggester struct {
	next aischedule.Suggester
}

var _ aischedule.Suggester = (*MeteredSuggester)(nil)

// NewMeteredSuggester wraps next.
func NewMeteredSuggester(next aischedule.Suggester) *MeteredSuggester {
	return &MeteredSuggester{next: next}
}

func (m *MeteredSuggester) Suggest(ctx context.Context, text string, now time.Time) (*aischedule.Suggestion, error) {
	ctx, span := observability.StartSpan(ctx, "llm.Suggest")
	defer span.End()

	start := time.Now()
	s, err := m.next.Suggest(ctx, text, now)
	observability.RecordLLMCall(time.Since(start), err == nil)
	observability.RecordSpanError(ctx, err)
	return s, err
}
