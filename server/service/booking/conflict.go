package booking

import "github.com/hrygo/venuebook/store"

// HasConflict reports whether two bookings claim the same venue at overlapping
// times. Ranges are half-open: a booking ending when another starts does not
// conflict, and cancelled bookings never conflict.
func HasConflict(candidate, existing *store.Booking) bool {
	if candidate.VenueID != existing.VenueID {
		return false
	}
	if candidate.Status == store.BookingCancelled || existing.Status == store.BookingCancelled {
		return false
	}
	return candidate.StartTs < existing.EndTs && candidate.EndTs > existing.StartTs
}

// FindConflicts returns the bookings in existing that conflict with candidate.
// A booking never conflicts with itself, so updates can pass the full list.
func FindConflicts(candidate *store.Booking, existing []*store.Booking) []*store.Booking {
	var conflicts []*store.Booking
	for _, b := range existing {
		if candidate.ID != "" && b.ID == candidate.ID {
			continue
		}
		if HasConflict(candidate, b) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
