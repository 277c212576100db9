package booking

import "github.com/google/uuid"

// HasConflict reports whether the requested stay overlaps any ACCEPTED
// booking in the given set. excludeID skips a booking's own row during the
// accept-time self-recheck; pass uuid.Nil to exclude nothing.
//
// PENDING bookings never count as conflicts: overlapping holds may coexist
// until one of them is accepted, and arbitration happens only at accept time.
func HasConflict(existing []*Booking, stay DateRange, excludeID uuid.UUID) bool {
	for _, b := range existing {
		if b.Status() != StatusAccepted {
			continue
		}
		if excludeID != uuid.Nil && b.ID() == excludeID {
			continue
		}
		if b.Stay().Overlaps(stay) {
			return true
		}
	}
	return false
}
