package booking

import (
	"context"
	"log/slog"

	"github.com/lithammer/shortuuid/v4"
	"go.opentelemetry.io/otel/attribute"

	aischedule "github.com/hrygo/venuebook/plugin/ai/schedule"
	bookingerrors "github.com/hrygo/venuebook/server/internal/errors"
	"github.com/hrygo/venuebook/server/internal/observability"
	"github.com/hrygo/venuebook/server/timezone"
	"github.com/hrygo/venuebook/store"
)

// RecurringRequest books every occurrence of a series.
type RecurringRequest struct {
	VenueID        string
	Occurrences    []aischedule.Occurrence
	RecurrenceKind string
	Purpose        string
	ContactInfo    string
}

// OccurrenceConflict describes one rejected occurrence.
type OccurrenceConflict struct {
	Index           int      `json:"index"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	ConflictingWith []string `json:"conflictingWith"`
}

// BatchResult separates the booked occurrences of a series from the rejected ones.
type BatchResult struct {
	SeriesID  string               `json:"seriesId"`
	Succeeded []*store.Booking     `json:"succeeded"`
	Conflicts []OccurrenceConflict `json:"conflicts"`
}

// AllSucceeded reports whether no occurrence was rejected.
func (r *BatchResult) AllSucceeded() bool {
	return len(r.Conflicts) == 0
}

// CreateRecurring books a series. Each occurrence is checked against the
// confirmed bookings plus the occurrences already accepted from this batch;
// conflicting occurrences are reported and the rest are still booked.
func (s *Service) CreateRecurring(ctx context.Context, req *RecurringRequest) (result *BatchResult, err error) {
	rc := observability.NewRequestContext(s.logger, "booking.create_recurring")
	rc.VenueID = req.VenueID
	ctx, span := observability.StartSpan(ctx, "booking.CreateRecurring",
		attribute.String("venue.id", req.VenueID),
		attribute.Int("occurrences", len(req.Occurrences)))
	defer func() {
		observability.RecordSpanError(ctx, err)
		span.End()
		rc.LogCompletion(err)
	}()

	if len(req.Occurrences) == 0 {
		return nil, bookingerrors.InvalidArgument("no occurrences to book")
	}
	first := req.Occurrences[0]
	v, err := s.validate(req.VenueID, first.Start, first.End, req.ContactInfo)
	if err != nil {
		return nil, err
	}
	windowStart, windowEnd := first.Start, first.End
	for _, occ := range req.Occurrences[1:] {
		if !occ.Start.Before(occ.End) {
			return nil, bookingerrors.InvalidArgument("start must be before end")
		}
		if occ.Start.Before(windowStart) {
			windowStart = occ.Start
		}
		if occ.End.After(windowEnd) {
			windowEnd = occ.End
		}
	}

	release, err := s.lockVenue(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	snapshot, err := s.confirmedOverlapping(ctx, v.ID, windowStart.Unix(), windowEnd.Unix())
	if err != nil {
		return nil, err
	}

	result = &BatchResult{
		SeriesID:  shortuuid.New(),
		Succeeded: []*store.Booking{},
		Conflicts: []OccurrenceConflict{},
	}
	defer func() {
		observability.RecordBookingsCreated("recurring", len(result.Succeeded))
		observability.RecordConflicts("recurring", len(result.Conflicts))
	}()

	for _, occ := range req.Occurrences {
		candidate := s.newBooking(v, occ.Start, occ.End, req.Purpose, req.ContactInfo)
		candidate.Recurring = true
		candidate.RecurrenceKind = req.RecurrenceKind
		candidate.OccurrenceIndex = occ.Index
		candidate.SeriesID = result.SeriesID

		if conflicts := FindConflicts(candidate, snapshot); len(conflicts) > 0 {
			c := OccurrenceConflict{
				Index: occ.Index,
				Date:  timezone.FormatDate(occ.Start, s.location),
				Time:  timezone.FormatClockRange(occ.Start, occ.End, s.location),
			}
			for _, b := range conflicts {
				c.ConflictingWith = append(c.ConflictingWith, timezone.FormatRange(b.Start(), b.End(), s.location))
			}
			result.Conflicts = append(result.Conflicts, c)
			rc.Warn("occurrence conflicts with existing booking",
				slog.Int("index", occ.Index),
				slog.String("date", c.Date),
				slog.String("time", c.Time))
			continue
		}

		created, err := s.store.CreateBooking(ctx, candidate)
		if err != nil {
			return result, storeError(candidate.ID, err)
		}
		result.Succeeded = append(result.Succeeded, created)
		snapshot = append(snapshot, created)
	}

	rc.Info("recurring booking processed",
		slog.String("series_id", result.SeriesID),
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("conflicts", len(result.Conflicts)))
	return result, nil
}
