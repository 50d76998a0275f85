package store

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a booking does not exist.
var ErrNotFound = errors.New("booking not found")

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is the object representing a booked venue slot.
// StartTs and EndTs are unix seconds of the half-open range [StartTs, EndTs).
type Booking struct {
	ID              string
	VenueID         string
	VenueName       string
	StartTs         int64
	EndTs           int64
	Purpose         string
	ContactInfo     string
	Status          BookingStatus
	CreatedTs       int64
	UpdatedTs       int64
	Recurring       bool
	RecurrenceKind  string
	OccurrenceIndex int
	SeriesID        string
}

// Start returns the start instant.
func (b *Booking) Start() time.Time { return time.Unix(b.StartTs, 0) }

// End returns the end instant.
func (b *Booking) End() time.Time { return time.Unix(b.EndTs, 0) }

// Clone returns a copy of the booking.
func (b *Booking) Clone() *Booking {
	c := *b
	return &c
}

// FindBooking is the find condition for booking.
type FindBooking struct {
	ID       *string
	VenueID  *string
	SeriesID *string
	Status   *BookingStatus

	// Overlap window: bookings with EndTs > OverlapStartTs and StartTs < OverlapEndTs.
	OverlapStartTs *int64
	OverlapEndTs   *int64
}

// Matches reports whether b satisfies the condition.
func (f *FindBooking) Matches(b *Booking) bool {
	if f == nil {
		return true
	}
	if f.ID != nil && b.ID != *f.ID {
		return false
	}
	if f.VenueID != nil && b.VenueID != *f.VenueID {
		return false
	}
	if f.SeriesID != nil && b.SeriesID != *f.SeriesID {
		return false
	}
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.OverlapStartTs != nil && b.EndTs <= *f.OverlapStartTs {
		return false
	}
	if f.OverlapEndTs != nil && b.StartTs >= *f.OverlapEndTs {
		return false
	}
	return true
}

// UpdateBooking is the update request for booking.
type UpdateBooking struct {
	ID          string
	UpdatedTs   *int64
	VenueID     *string
	VenueName   *string
	StartTs     *int64
	EndTs       *int64
	Purpose     *string
	ContactInfo *string
	Status      *BookingStatus
}

// Apply writes the set fields onto b.
func (u *UpdateBooking) Apply(b *Booking) {
	if v := u.UpdatedTs; v != nil {
		b.UpdatedTs = *v
	}
	if v := u.VenueID; v != nil {
		b.VenueID = *v
	}
	if v := u.VenueName; v != nil {
		b.VenueName = *v
	}
	if v := u.StartTs; v != nil {
		b.StartTs = *v
	}
	if v := u.EndTs; v != nil {
		b.EndTs = *v
	}
	if v := u.Purpose; v != nil {
		b.Purpose = *v
	}
	if v := u.ContactInfo; v != nil {
		b.ContactInfo = *v
	}
	if v := u.Status; v != nil {
		b.Status = *v
	}
}

// DeleteBooking is the delete request for booking.
type DeleteBooking struct {
	ID string
}

// SortBookings orders bookings by start time, then ID.
func SortBookings(list []*Booking) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartTs != list[j].StartTs {
			return list[i].StartTs < list[j].StartTs
		}
		return list[i].ID < list[j].ID
	})
}

// CreateBooking creates a new booking.
func (s *Store) CreateBooking(ctx context.Context, create *Booking) (*Booking, error) {
	if create.ID == "" {
		return nil, errors.New("booking id is required")
	}
	return s.write(ctx, "create", create.ID, func(ctx context.Context) (*Booking, error) {
		return s.driver.CreateBooking(ctx, create)
	}, func() (*Booking, error) {
		if _, ok := s.mirror[create.ID]; ok {
			return nil, errors.Errorf("booking %s already exists", create.ID)
		}
		return create.Clone(), nil
	})
}

// ListBookings lists bookings with filter, ordered by start time.
func (s *Store) ListBookings(ctx context.Context, find *FindBooking) ([]*Booking, error) {
	if !s.IsDegraded() {
		opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
		list, err := s.driver.ListBookings(opCtx, find)
		cancel()
		if err == nil {
			return list, nil
		}
		if callerGone(ctx, err) {
			return nil, err
		}
		s.degrade("list", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*Booking, 0)
	for _, b := range s.mirror {
		if find.Matches(b) {
			list = append(list, b.Clone())
		}
	}
	SortBookings(list)
	return list, nil
}

// GetBooking returns one booking by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (*Booking, error) {
	list, err := s.ListBookings(ctx, &FindBooking{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

// UpdateBooking updates a booking and returns the stored result.
func (s *Store) UpdateBooking(ctx context.Context, update *UpdateBooking) (*Booking, error) {
	return s.write(ctx, "update", update.ID, func(ctx context.Context) (*Booking, error) {
		return s.driver.UpdateBooking(ctx, update)
	}, func() (*Booking, error) {
		current, ok := s.mirror[update.ID]
		if !ok {
			return nil, ErrNotFound
		}
		updated := current.Clone()
		update.Apply(updated)
		return updated, nil
	})
}

// DeleteBooking removes a booking.
func (s *Store) DeleteBooking(ctx context.Context, delete *DeleteBooking) error {
	_, err := s.write(ctx, "delete", delete.ID, func(ctx context.Context) (*Booking, error) {
		return nil, s.driver.DeleteBooking(ctx, delete)
	}, func() (*Booking, error) {
		if _, ok := s.mirror[delete.ID]; !ok {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}
