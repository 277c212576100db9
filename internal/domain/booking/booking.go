package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
)

// Booking is the aggregate root for the booking domain. A booking is created
// by a traveler, accepted by the property owner and cancellable by either
// party; it is never physically deleted.
type Booking struct {
	id         uuid.UUID
	propertyID uuid.UUID
	travelerID uuid.UUID
	ownerID    uuid.UUID
	stay       DateRange
	numGuests  int
	status     BookingStatus

	// totalPriceCents is derived at creation time and immutable afterwards.
	totalPriceCents int64
	nights          int

	cancelledBy        *uuid.UUID
	cancellationReason string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=PENDING.
func NewBooking(
	propertyID uuid.UUID,
	travelerID uuid.UUID,
	ownerID uuid.UUID,
	stay DateRange,
	numGuests int,
	totalPriceCents int64,
) (*Booking, error) {
	if propertyID == uuid.Nil {
		return nil, domain.NewValidationError("property ID is required")
	}
	if travelerID == uuid.Nil {
		return nil, domain.NewValidationError("traveler ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if numGuests < 1 {
		return nil, domain.NewValidationError("number of guests must be at least 1")
	}
	if totalPriceCents <= 0 {
		return nil, domain.NewValidationError("total price must be positive")
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		propertyID:      propertyID,
		travelerID:      travelerID,
		ownerID:         ownerID,
		stay:            stay,
		numGuests:       numGuests,
		status:          StatusPending,
		totalPriceCents: totalPriceCents,
		nights:          stay.Nights(),
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	propertyID uuid.UUID,
	travelerID uuid.UUID,
	ownerID uuid.UUID,
	stay DateRange,
	numGuests int,
	status BookingStatus,
	totalPriceCents int64,
	cancelledBy *uuid.UUID,
	cancellationReason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		propertyID:         propertyID,
		travelerID:         travelerID,
		ownerID:            ownerID,
		stay:               stay,
		numGuests:          numGuests,
		status:             status,
		totalPriceCents:    totalPriceCents,
		nights:             stay.Nights(),
		cancelledBy:        cancelledBy,
		cancellationReason: cancellationReason,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// PropertyID returns the booked property's identifier.
func (b *Booking) PropertyID() uuid.UUID { return b.propertyID }

// TravelerID returns the requesting traveler's user ID.
func (b *Booking) TravelerID() uuid.UUID { return b.travelerID }

// OwnerID returns the property owner's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// Stay returns the half-open [check-in, check-out) interval.
func (b *Booking) Stay() DateRange { return b.stay }

// CheckIn returns the check-in date.
func (b *Booking) CheckIn() time.Time { return b.stay.CheckIn }

// CheckOut returns the check-out date.
func (b *Booking) CheckOut() time.Time { return b.stay.CheckOut }

// NumGuests returns the requested guest count.
func (b *Booking) NumGuests() int { return b.numGuests }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// TotalPriceCents returns the total price in cents, fixed at creation.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Nights returns the number of billable nights.
func (b *Booking) Nights() int { return b.nights }

// CancelledBy returns the user who cancelled the booking, or nil.
func (b *Booking) CancelledBy() *uuid.UUID { return b.cancelledBy }

// CancellationReason returns the reason given at cancellation, if any.
func (b *Booking) CancellationReason() string { return b.cancellationReason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsParty reports whether the given user is the booking's traveler or owner.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return userID == b.travelerID || userID == b.ownerID
}

// --- Behavior ---

// Accept transitions the booking from PENDING to ACCEPTED. Conflict
// re-validation against other accepted bookings happens in the lifecycle
// engine before this is called.
func (b *Booking) Accept() error {
	if !b.status.CanTransitionTo(StatusAccepted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusAccepted))
	}
	b.status = StatusAccepted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to CANCELLED, recording who cancelled and
// why. Cancelling an already cancelled booking is a conflict.
func (b *Booking) Cancel(cancelledBy uuid.UUID, reason string) error {
	if b.status == StatusCancelled {
		return domain.NewConflictError("booking is already cancelled")
	}
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.cancelledBy = &cancelledBy
	b.cancellationReason = reason
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
