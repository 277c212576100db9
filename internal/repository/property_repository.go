package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain/property"
)

// PropertyModel is the GORM model for the properties table. The booking core
// only reads the narrow projection it needs; the rest of the row belongs to
// the property service.
type PropertyModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID `gorm:"type:uuid;index;not null"`
	PricePerNightCents int64     `gorm:"not null"`
	MaxGuests          int       `gorm:"not null"`
	IsAvailable        bool      `gorm:"not null;default:true"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PropertyModel) TableName() string {
	return "properties"
}

// GormPropertyReader is the GORM-based implementation of the property.Reader
// port.
type GormPropertyReader struct {
	db *gorm.DB
}

// NewGormPropertyReader creates a new GormPropertyReader.
func NewGormPropertyReader(db *gorm.DB) *GormPropertyReader {
	return &GormPropertyReader{db: db}
}

// Get retrieves the booking-relevant view of a property.
func (r *GormPropertyReader) Get(ctx context.Context, propertyID uuid.UUID) (*property.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).Where("id = ?", propertyID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("property", propertyID.String())
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &property.Property{
		ID:                 model.ID,
		OwnerID:            model.OwnerID,
		PricePerNightCents: model.PricePerNightCents,
		MaxGuests:          model.MaxGuests,
		IsAvailable:        model.IsAvailable,
	}, nil
}

var _ property.Reader = (*GormPropertyReader)(nil)
