package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	bookingerrors "github.com/hrygo/venuebook/server/internal/errors"
	"github.com/hrygo/venuebook/server/timezone"
	"github.com/hrygo/venuebook/store"
)

// Booking errors that can be checked with errors.Is.
var (
	// ErrBookingConflict is returned when a booking overlaps a confirmed booking of the same venue.
	ErrBookingConflict = bookingerrors.New(bookingerrors.ErrCodeBookingConflict, "booking conflicts with an existing booking")
	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = bookingerrors.New(bookingerrors.ErrCodeBookingNotFound, "booking not found")
)

// ConflictError reports the confirmed bookings a request collided with.
type ConflictError struct {
	Conflict             bool             `json:"conflict"`
	ConflictingVenue     string           `json:"conflictingVenue"`
	ConflictingTimeRange string           `json:"conflictingTimeRange"`
	Conflicts            []*store.Booking `json:"-"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already booked for %s", e.ConflictingVenue, e.ConflictingTimeRange)
}

// Unwrap makes errors.Is(err, ErrBookingConflict) hold.
func (e *ConflictError) Unwrap() error {
	return ErrBookingConflict
}

func newConflictError(conflicts []*store.Booking, loc *time.Location) *ConflictError {
	ranges := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		ranges = append(ranges, timezone.FormatRange(c.Start(), c.End(), loc))
	}
	return &ConflictError{
		Conflict:             true,
		ConflictingVenue:     conflicts[0].VenueName,
		ConflictingTimeRange: strings.Join(ranges, ", "),
		Conflicts:            conflicts,
	}
}

func notFound(id string) error {
	return bookingerrors.Wrap(store.ErrNotFound, bookingerrors.ErrCodeBookingNotFound, fmt.Sprintf("booking %s not found", id))
}

// storeError classifies a store failure.
func storeError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(id)
	}
	return bookingerrors.StoreUnavailable(err)
}
