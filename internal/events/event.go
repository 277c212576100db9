package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents is the Kafka topic carrying booking lifecycle events.
// Messages are keyed by booking id so a consumer observes events for one
// booking in causal order.
const TopicBookingEvents = "booking-events"

// Booking lifecycle event types.
const (
	BookingCreated   = "BOOKING_CREATED"
	BookingAccepted  = "BOOKING_ACCEPTED"
	BookingCancelled = "BOOKING_CANCELLED"
)

// BookingEventData is the payload shared by all booking lifecycle events.
type BookingEventData struct {
	BookingID          uuid.UUID  `json:"booking_id"`
	PropertyID         uuid.UUID  `json:"property_id"`
	TravelerID         uuid.UUID  `json:"traveler_id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	CheckIn            time.Time  `json:"check_in"`
	CheckOut           time.Time  `json:"check_out"`
	TotalPriceCents    int64      `json:"total_price_cents"`
	Status             string     `json:"status"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
}

// Envelope is the wire format for booking events.
type Envelope struct {
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      BookingEventData `json:"data"`
}

// NewEnvelope stamps an event with the current time.
func NewEnvelope(eventType string, data BookingEventData) Envelope {
	return Envelope{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Key returns the Kafka partition key for this event.
func (e Envelope) Key() string {
	return e.Data.BookingID.String()
}

// Marshal serializes the envelope for the wire.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
