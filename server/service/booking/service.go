// Package booking provides venue booking management: conflict checking,
// single and recurring booking creation, admin edits, schedule queries and
// usage reports, plus the Assistant that books straight from a sentence.
//
// Every write that can change a venue's occupancy runs under that venue's
// lock, so the conflict check and the write are one critical section.
package booking

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hrygo/venuebook/internal/venue"
	bookingerrors "github.com/hrygo/venuebook/server/internal/errors"
	"github.com/hrygo/venuebook/server/internal/observability"
	"github.com/hrygo/venuebook/store"
	"github.com/hrygo/venuebook/store/lock"
)

// Store is the interface for store operations needed by the booking service.
type Store interface {
	CreateBooking(ctx context.Context, create *store.Booking) (*store.Booking, error)
	ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error)
	GetBooking(ctx context.Context, id string) (*store.Booking, error)
	UpdateBooking(ctx context.Context, update *store.UpdateBooking) (*store.Booking, error)
	DeleteBooking(ctx context.Context, delete *store.DeleteBooking) error
}

// Service manages bookings.
type Service struct {
	store    Store
	catalog  *venue.Catalog
	locker   lock.VenueLocker
	location *time.Location
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLocker sets the per-venue locker. Defaults to an in-process locker.
func WithLocker(l lock.VenueLocker) Option {
	return func(s *Service) { s.locker = l }
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new booking service.
func NewService(st Store, catalog *venue.Catalog, location *time.Location, opts ...Option) *Service {
	if location == nil {
		location = time.Local
	}
	s := &Service{
		store:    st,
		catalog:  catalog,
		locker:   lock.NewLocalLocker(),
		location: location,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the civil timezone used for dates and reports.
func (s *Service) Location() *time.Location {
	return s.location
}

// Now returns the current time in the civil timezone.
func (s *Service) Now() time.Time {
	return s.clock().In(s.location)
}

// CreateRequest is the request to create a single booking.
type CreateRequest struct {
	VenueID     string
	Start       time.Time
	End         time.Time
	Purpose     string
	ContactInfo string
}

// UpdateRequest is an admin edit. Nil fields are left unchanged.
type UpdateRequest struct {
	ID          string
	VenueID     *string
	Start       *time.Time
	End         *time.Time
	Purpose     *string
	ContactInfo *string
}

// ListFilter narrows List. Zero values do not filter.
type ListFilter struct {
	VenueID          string
	SeriesID         string
	From             time.Time
	To               time.Time
	IncludeCancelled bool
}

// Create books one slot, rejecting it with a *ConflictError on overlap.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (created *store.Booking, err error) {
	rc := observability.NewRequestContext(s.logger, "booking.create")
	rc.VenueID = req.VenueID
	ctx, span := observability.StartSpan(ctx, "booking.Create", attribute.String("venue.id", req.VenueID))
	defer func() {
		observability.RecordSpanError(ctx, err)
		span.End()
		rc.LogCompletion(err)
	}()

	v, err := s.validate(req.VenueID, req.Start, req.End, req.ContactInfo)
	if err != nil {
		return nil, err
	}

	release, err := s.lockVenue(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	candidate := s.newBooking(v, req.Start, req.End, req.Purpose, req.ContactInfo)
	existing, err := s.confirmedOverlapping(ctx, v.ID, candidate.StartTs, candidate.EndTs)
	if err != nil {
		return nil, err
	}
	if conflicts := FindConflicts(candidate, existing); len(conflicts) > 0 {
		observability.RecordConflicts("single", 1)
		return nil, newConflictError(conflicts, s.location)
	}

	created, err = s.store.CreateBooking(ctx, candidate)
	if err != nil {
		return nil, storeError(candidate.ID, err)
	}
	observability.RecordBookingsCreated("single", 1)
	return created, nil
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id string) (*store.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeError(id, err)
	}
	return b, nil
}

// List returns bookings matching filter ordered by start time.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*store.Booking, error) {
	find := &store.FindBooking{}
	if filter.VenueID != "" {
		find.VenueID = &filter.VenueID
	}
	if filter.SeriesID != "" {
		find.SeriesID = &filter.SeriesID
	}
	if !filter.IncludeCancelled {
		confirmed := store.BookingConfirmed
		find.Status = &confirmed
	}
	if !filter.From.IsZero() {
		from := filter.From.Unix()
		find.OverlapStartTs = &from
	}
	if !filter.To.IsZero() {
		to := filter.To.Unix()
		find.OverlapEndTs = &to
	}

	list, err := s.store.ListBookings(ctx, find)
	if err != nil {
		return nil, bookingerrors.StoreUnavailable(err)
	}
	return list, nil
}

// Update applies an admin edit. Changing the venue or time re-checks the
// booking against the other confirmed bookings of the target venue.
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (updated *store.Booking, err error) {
	rc := observability.NewRequestContext(s.logger, "booking.update")
	ctx, span := observability.StartSpan(ctx, "booking.Update", attribute.String("booking.id", req.ID))
	defer func() {
		observability.RecordSpanError(ctx, err)
		span.End()
		rc.LogCompletion(err)
	}()

	target := ""
	if req.VenueID != nil {
		target = *req.VenueID
	}
	existing, release, err := s.lockBooking(ctx, req.ID, target)
	if err != nil {
		return nil, err
	}
	defer release()
	rc.VenueID = existing.VenueID

	candidate := existing.Clone()
	if req.VenueID != nil {
		candidate.VenueID = *req.VenueID
	}
	if req.Start != nil {
		candidate.StartTs = req.Start.Unix()
	}
	if req.End != nil {
		candidate.EndTs = req.End.Unix()
	}

	update := &store.UpdateBooking{ID: req.ID, Purpose: req.Purpose}
	if req.ContactInfo != nil {
		contact := strings.TrimSpace(*req.ContactInfo)
		if contact == "" {
			return nil, bookingerrors.InvalidArgument("contact info is required")
		}
		update.ContactInfo = &contact
	}

	moved := candidate.VenueID != existing.VenueID || candidate.StartTs != existing.StartTs || candidate.EndTs != existing.EndTs
	if moved {
		v, err := s.validate(candidate.VenueID, candidate.Start(), candidate.End(), existing.ContactInfo)
		if err != nil {
			return nil, err
		}
		rc.VenueID = v.ID

		if candidate.Status == store.BookingConfirmed {
			others, err := s.confirmedOverlapping(ctx, v.ID, candidate.StartTs, candidate.EndTs)
			if err != nil {
				return nil, err
			}
			if conflicts := FindConflicts(candidate, others); len(conflicts) > 0 {
				observability.RecordConflicts("update", 1)
				return nil, newConflictError(conflicts, s.location)
			}
		}

		update.VenueID, update.VenueName = &v.ID, &v.Name
		update.StartTs, update.EndTs = &candidate.StartTs, &candidate.EndTs
	}

	now := s.clock().Unix()
	update.UpdatedTs = &now
	updated, err = s.store.UpdateBooking(ctx, update)
	if err != nil {
		return nil, storeError(req.ID, err)
	}
	return updated, nil
}

// Cancel marks a booking cancelled, freeing its slot.
func (s *Service) Cancel(ctx context.Context, id string) (cancelled *store.Booking, err error) {
	rc := observability.NewRequestContext(s.logger, "booking.cancel")
	defer func() { rc.LogCompletion(err) }()

	existing, release, err := s.lockBooking(ctx, id, "")
	if err != nil {
		return nil, err
	}
	defer release()
	rc.VenueID = existing.VenueID

	status := store.BookingCancelled
	now := s.clock().Unix()
	cancelled, err = s.store.UpdateBooking(ctx, &store.UpdateBooking{ID: id, Status: &status, UpdatedTs: &now})
	if err != nil {
		return nil, storeError(id, err)
	}
	return cancelled, nil
}

// Delete removes a booking.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	rc := observability.NewRequestContext(s.logger, "booking.delete")
	defer func() { rc.LogCompletion(err) }()

	existing, release, err := s.lockBooking(ctx, id, "")
	if err != nil {
		return err
	}
	defer release()
	rc.VenueID = existing.VenueID

	if err := s.store.DeleteBooking(ctx, &store.DeleteBooking{ID: id}); err != nil {
		return storeError(id, err)
	}
	return nil
}

func (s *Service) validate(venueID string, start, end time.Time, contact string) (venue.Venue, error) {
	v, ok := s.catalog.FindByID(venueID)
	if !ok {
		return venue.Venue{}, bookingerrors.InvalidArgument("unknown venue: " + venueID)
	}
	if start.IsZero() || end.IsZero() {
		return venue.Venue{}, bookingerrors.InvalidArgument("start and end are required")
	}
	if !start.Before(end) {
		return venue.Venue{}, bookingerrors.InvalidArgument("start must be before end")
	}
	if strings.TrimSpace(contact) == "" {
		return venue.Venue{}, bookingerrors.InvalidArgument("contact info is required")
	}
	return v, nil
}

func (s *Service) lockVenue(ctx context.Context, venueID string) (lock.Release, error) {
	release, err := s.locker.Acquire(ctx, venueID)
	if err != nil {
		return nil, bookingerrors.Wrap(err, bookingerrors.ErrCodeStoreUnavailable, "failed to lock venue "+venueID)
	}
	return release, nil
}

// lockBookingAttempts bounds how often lockBooking chases a booking that keeps
// changing venue underneath it.
const lockBookingAttempts = 3

// lockBooking locks the venue of booking id, plus target when it names another
// venue, and returns the booking as read under those locks. Locks are taken in
// venue ID order.
func (s *Service) lockBooking(ctx context.Context, id, target string) (*store.Booking, lock.Release, error) {
	for attempt := 0; attempt < lockBookingAttempts; attempt++ {
		seen, err := s.store.GetBooking(ctx, id)
		if err != nil {
			return nil, nil, storeError(id, err)
		}

		venues := []string{seen.VenueID}
		if target != "" && target != seen.VenueID {
			venues = append(venues, target)
		}
		sort.Strings(venues)

		release, err := s.lockVenues(ctx, venues)
		if err != nil {
			return nil, nil, err
		}

		current, err := s.store.GetBooking(ctx, id)
		if err != nil {
			release()
			return nil, nil, storeError(id, err)
		}
		if slices.Contains(venues, current.VenueID) {
			return current, release, nil
		}
		release()
	}
	return nil, nil, bookingerrors.New(bookingerrors.ErrCodeBookingConflict, "booking "+id+" is being moved concurrently")
}

func (s *Service) lockVenues(ctx context.Context, venues []string) (lock.Release, error) {
	releases := make([]lock.Release, 0, len(venues))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, venueID := range venues {
		release, err := s.lockVenue(ctx, venueID)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

func (s *Service) newBooking(v venue.Venue, start, end time.Time, purpose, contact string) *store.Booking {
	now := s.clock().Unix()
	return &store.Booking{
		ID:          uuid.NewString(),
		VenueID:     v.ID,
		VenueName:   v.Name,
		StartTs:     start.Unix(),
		EndTs:       end.Unix(),
		Purpose:     purpose,
		ContactInfo: strings.TrimSpace(contact),
		Status:      store.BookingConfirmed,
		CreatedTs:   now,
		UpdatedTs:   now,
	}
}

// confirmedOverlapping loads the confirmed bookings of a venue that touch [start, end).
func (s *Service) confirmedOverlapping(ctx context.Context, venueID string, start, end int64) ([]*store.Booking, error) {
	confirmed := store.BookingConfirmed
	list, err := s.store.ListBookings(ctx, &store.FindBooking{
		VenueID:        &venueID,
		Status:         &confirmed,
		OverlapStartTs: &start,
		OverlapEndTs:   &end,
	})
	if err != nil {
		return nil, bookingerrors.StoreUnavailable(err)
	}
	return list, nil
}
