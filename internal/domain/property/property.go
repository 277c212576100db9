// Package property defines the read-only view of properties that the booking
// core depends on. Property management itself lives in another service; this
// core only ever asks "may this property be booked, by how many guests, and
// at what rate".
package property

import (
	"context"

	"github.com/google/uuid"
)

// Property is the narrow projection the booking core reads.
type Property struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	PricePerNightCents int64
	MaxGuests          int
	IsAvailable        bool
}

// Reader is the injected lookup port. Implementations return a not-found
// error for unknown ids.
type Reader interface {
	Get(ctx context.Context, propertyID uuid.UUID) (*Property, error)
}
