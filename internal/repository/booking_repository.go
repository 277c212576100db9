package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
	bookingDomain "github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PropertyID         uuid.UUID  `gorm:"type:uuid;index:idx_bookings_property_status,priority:1;not null"`
	TravelerID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	OwnerID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckIn            time.Time  `gorm:"type:date;not null"`
	CheckOut           time.Time  `gorm:"type:date;not null"`
	NumGuests          int        `gorm:"not null"`
	Status             string     `gorm:"not null;size:20;index:idx_bookings_property_status,priority:2"`
	TotalPriceCents    int64      `gorm:"not null"`
	CancelledBy        *uuid.UUID `gorm:"type:uuid"`
	CancellationReason string     `gorm:"size:500"`
	Version            int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
	// inTx marks transaction-scoped instances; only those may take the
	// per-property advisory lock, which lives until the transaction ends.
	inTx bool
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByTravelerID retrieves a traveler's bookings, newest first.
func (r *GormBookingRepository) FindByTravelerID(ctx context.Context, travelerID uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "traveler_id = ?", travelerID, status, page, limit)
}

// FindByOwnerID retrieves bookings against an owner's properties, newest first.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaged(ctx, "owner_id = ?", ownerID, status, page, limit)
}

func (r *GormBookingRepository) findPaged(ctx context.Context, cond string, id uuid.UUID, status *bookingDomain.BookingStatus, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, id)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// FindAcceptedByProperty retrieves the ACCEPTED bookings of a property.
func (r *GormBookingRepository) FindAcceptedByProperty(ctx context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("property_id = ? AND status = ?", propertyID, string(bookingDomain.StatusAccepted))

	var models []BookingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find accepted bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// LockProperty takes a transaction-scoped advisory lock on the property so
// concurrent accepts for the same property run one at a time. Under READ
// COMMITTED the conflict re-read that follows the lock acquisition sees the
// rival transaction's committed status change, which a FOR UPDATE over
// already-ACCEPTED rows cannot guarantee: the rival's booking is still
// PENDING and is filtered out before any row is locked.
func (r *GormBookingRepository) LockProperty(ctx context.Context, propertyID uuid.UUID) error {
	if !r.inTx {
		return fmt.Errorf("LockProperty requires a transaction")
	}
	err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?::text))", propertyID.String()).Error
	if err != nil {
		return fmt.Errorf("failed to lock property: %w", err)
	}
	return nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before persisting).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"cancelled_by":        model.CancelledBy,
			"cancellation_reason": model.CancellationReason,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another request")
	}
	return nil
}

// InTx runs fn against a transaction-scoped repository.
func (r *GormBookingRepository) InTx(ctx context.Context, fn func(bookingDomain.BookingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBookingRepository{db: tx, inTx: true})
	})
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                 bk.ID(),
		PropertyID:         bk.PropertyID(),
		TravelerID:         bk.TravelerID(),
		OwnerID:            bk.OwnerID(),
		CheckIn:            bk.CheckIn(),
		CheckOut:           bk.CheckOut(),
		NumGuests:          bk.NumGuests(),
		Status:             string(bk.Status()),
		TotalPriceCents:    bk.TotalPriceCents(),
		CancelledBy:        bk.CancelledBy(),
		CancellationReason: bk.CancellationReason(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	stay := bookingDomain.DateRange{CheckIn: m.CheckIn.UTC(), CheckOut: m.CheckOut.UTC()}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.PropertyID,
		m.TravelerID,
		m.OwnerID,
		stay,
		m.NumGuests,
		status,
		m.TotalPriceCents,
		m.CancelledBy,
		m.CancellationReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
