package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
	bookingDomain "github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain/booking"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain/property"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/events"
)

// dateLayout is the wire format for check-in/check-out dates.
const dateLayout = "2006-01-02"

// CreateBookingRequest holds the data needed to request a new booking.
type CreateBookingRequest struct {
	PropertyID   string `json:"property_id" binding:"required"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
	NumGuests    int    `json:"num_guests" binding:"required"`
}

// CreateBookingResponse is the reduced representation returned on creation.
type CreateBookingResponse struct {
	BookingID       uuid.UUID `json:"booking_id"`
	Status          string    `json:"status"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Nights          int       `json:"nights"`
}

// CancelBookingRequest carries the optional cancellation reason.
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellation_reason"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID  `json:"id"`
	PropertyID         uuid.UUID  `json:"property_id"`
	TravelerID         uuid.UUID  `json:"traveler_id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	CheckInDate        string     `json:"check_in_date"`
	CheckOutDate       string     `json:"check_out_date"`
	NumGuests          int        `json:"num_guests"`
	Status             string     `json:"status"`
	TotalPriceCents    int64      `json:"total_price_cents"`
	Nights             int        `json:"nights"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BookingUseCase is the lifecycle engine contract consumed by transport.
type BookingUseCase interface {
	CreateBooking(ctx context.Context, travelerID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error)
	AcceptBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error)
	CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error)
	GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error)
	GetTravelerBookings(ctx context.Context, travelerID uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) (*domain.PaginatedResult[BookingDTO], error)
	GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) (*domain.PaginatedResult[BookingDTO], error)
}

// EventPublisher hands lifecycle events to the background delivery pipeline.
// Publishing never fails the caller.
type EventPublisher interface {
	Publish(evt events.Envelope)
}

// BookingService is the application service orchestrating the booking
// lifecycle: validation, conflict checking, pricing, status transitions and
// event emission.
type BookingService struct {
	repo       bookingDomain.BookingRepository
	properties property.Reader
	pricing    bookingDomain.PricingStrategy
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	properties property.Reader,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:       repo,
		properties: properties,
		pricing:    pricing,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateBooking validates a traveler's request, prices the stay and persists
// a PENDING booking. Only ACCEPTED bookings constrain availability, so
// overlapping PENDING requests may coexist until the owner accepts one.
func (s *BookingService) CreateBooking(ctx context.Context, travelerID uuid.UUID, req CreateBookingRequest) (*CreateBookingResponse, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, domain.NewValidationError("property ID must be a valid UUID")
	}
	stay, err := parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}
	if req.NumGuests < 1 {
		return nil, domain.NewValidationError("number of guests must be at least 1")
	}

	prop, err := s.properties.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.IsAvailable {
		return nil, domain.NewUnavailableError("this property is currently unavailable for booking")
	}
	if req.NumGuests > prop.MaxGuests {
		return nil, domain.NewConflictError(fmt.Sprintf("property can accommodate maximum %d guests", prop.MaxGuests))
	}

	accepted, err := s.repo.FindAcceptedByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if bookingDomain.HasConflict(accepted, stay, uuid.Nil) {
		return nil, domain.NewConflictError("property is already booked for the selected dates")
	}

	quote, err := s.pricing.Price(stay, prop.PricePerNightCents)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(propertyID, travelerID, prop.OwnerID, stay, req.NumGuests, quote.TotalPriceCents)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishLifecycle(events.BookingCreated, bk)

	return &CreateBookingResponse{
		BookingID:       bk.ID(),
		Status:          string(bk.Status()),
		TotalPriceCents: bk.TotalPriceCents(),
		Nights:          bk.Nights(),
	}, nil
}

// AcceptBooking transitions a PENDING booking to ACCEPTED on behalf of the
// property owner. The transaction first takes the per-property lock, then
// re-runs the conflict check, so two racing accepts of overlapping requests
// run one after the other and the second sees the first's committed accept;
// the loser gets a conflict error and no auto-cancel is performed.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	var accepted *bookingDomain.Booking
	err := s.repo.InTx(ctx, func(txRepo bookingDomain.BookingRepository) error {
		bk, err := txRepo.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk.OwnerID() != actorID {
			return domain.NewForbiddenError("you do not have permission to accept this booking")
		}
		if err := txRepo.LockProperty(ctx, bk.PropertyID()); err != nil {
			return err
		}
		existing, err := txRepo.FindAcceptedByProperty(ctx, bk.PropertyID())
		if err != nil {
			return err
		}
		if bookingDomain.HasConflict(existing, bk.Stay(), bk.ID()) {
			return domain.NewConflictError("property is already booked for these dates")
		}
		if err := bk.Accept(); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := txRepo.Update(ctx, bk); err != nil {
			return err
		}
		accepted = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycle(events.BookingAccepted, accepted)

	result := toBookingDTO(accepted)
	return &result, nil
}

// CancelBooking transitions a booking to CANCELLED on behalf of its owner or
// traveler, recording who cancelled and why.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actorID) {
		return nil, domain.NewForbiddenError("you do not have permission to cancel this booking")
	}

	if err := bk.Cancel(actorID, reason); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishLifecycle(events.BookingCancelled, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a booking for one of its parties.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actorID) {
		return nil, domain.NewForbiddenError("you do not have permission to view this booking")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetTravelerBookings retrieves paginated bookings created by a traveler.
func (s *BookingService) GetTravelerBookings(ctx context.Context, travelerID uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByTravelerID(ctx, travelerID, status, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetOwnerBookings retrieves paginated bookings against an owner's properties.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByOwnerID(ctx, ownerID, status, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Helpers ---

func (s *BookingService) publishLifecycle(eventType string, bk *bookingDomain.Booking) {
	evt := events.NewEnvelope(eventType, events.BookingEventData{
		BookingID:          bk.ID(),
		PropertyID:         bk.PropertyID(),
		TravelerID:         bk.TravelerID(),
		OwnerID:            bk.OwnerID(),
		CheckIn:            bk.CheckIn(),
		CheckOut:           bk.CheckOut(),
		TotalPriceCents:    bk.TotalPriceCents(),
		Status:             string(bk.Status()),
		CancelledBy:        bk.CancelledBy(),
		CancellationReason: bk.CancellationReason(),
	})
	s.publisher.Publish(evt)
	s.logger.Info("booking event queued",
		zap.String("event_type", eventType),
		zap.String("booking_id", bk.ID().String()),
	)
}

func parseStay(checkIn, checkOut string) (bookingDomain.DateRange, error) {
	in, err := time.ParseInLocation(dateLayout, checkIn, time.UTC)
	if err != nil {
		return bookingDomain.DateRange{}, domain.NewValidationError("check_in_date must be formatted as YYYY-MM-DD")
	}
	out, err := time.ParseInLocation(dateLayout, checkOut, time.UTC)
	if err != nil {
		return bookingDomain.DateRange{}, domain.NewValidationError("check_out_date must be formatted as YYYY-MM-DD")
	}
	return bookingDomain.NewDateRange(in, out)
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                 bk.ID(),
		PropertyID:         bk.PropertyID(),
		TravelerID:         bk.TravelerID(),
		OwnerID:            bk.OwnerID(),
		CheckInDate:        bk.CheckIn().Format(dateLayout),
		CheckOutDate:       bk.CheckOut().Format(dateLayout),
		NumGuests:          bk.NumGuests(),
		Status:             string(bk.Status()),
		TotalPriceCents:    bk.TotalPriceCents(),
		Nights:             bk.Nights(),
		CancelledBy:        bk.CancelledBy(),
		CancellationReason: bk.CancellationReason(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

var _ BookingUseCase = (*BookingService)(nil)
