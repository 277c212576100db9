package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByTravelerID retrieves bookings created by a traveler, newest first,
	// optionally filtered by status, with pagination.
	FindByTravelerID(ctx context.Context, travelerID uuid.UUID, status *BookingStatus, page, limit int) ([]*Booking, int64, error)

	// FindByOwnerID retrieves bookings against an owner's properties, newest
	// first, optionally filtered by status, with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, status *BookingStatus, page, limit int) ([]*Booking, int64, error)

	// FindAcceptedByProperty retrieves the ACCEPTED bookings of a property.
	FindAcceptedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error)

	// LockProperty serializes writers for one property until the surrounding
	// transaction ends. Must be called inside InTx before accept-time conflict
	// re-validation: a rival transaction accepting an overlapping booking
	// holds the same lock, so the re-read that follows sees its committed
	// status change. Locking rows that are already ACCEPTED is not enough,
	// because the rival's booking is still PENDING and matches no lockable
	// row.
	LockProperty(ctx context.Context, propertyID uuid.UUID) error

	// Save persists a new booking.
	Save(ctx context.Context, bk *Booking) error

	// Update persists changes to an existing booking with optimistic locking,
	// returning a conflict error when another writer got there first.
	Update(ctx context.Context, bk *Booking) error

	// InTx runs fn against a transaction-scoped repository. Used by the
	// lifecycle engine to make conflict re-validation and the status write a
	// single atomic step.
	InTx(ctx context.Context, fn func(BookingRepository) error) error
}
