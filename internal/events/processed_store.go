package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessedEventModel records events a consumer has already handled. The
// composite primary key (booking id, event type) is the idempotency key:
// inserting a duplicate is a no-op, so replayed or redelivered events are
// detected without extra reads.
type ProcessedEventModel struct {
	BookingID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"primaryKey;size:50"`
	ProcessedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProcessedEventModel) TableName() string {
	return "processed_events"
}

// ProcessedStore tracks handled events for consumer idempotency.
type ProcessedStore struct {
	db *gorm.DB
}

// NewProcessedStore creates a new ProcessedStore.
func NewProcessedStore(db *gorm.DB) *ProcessedStore {
	return &ProcessedStore{db: db}
}

// MarkProcessed records the event and reports whether it had been handled
// before.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, bookingID uuid.UUID, eventType string) (alreadyProcessed bool, err error) {
	row := &ProcessedEventModel{
		BookingID:   bookingID,
		EventType:   eventType,
		ProcessedAt: time.Now().UTC(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, fmt.Errorf("failed to record processed event: %w", result.Error)
	}
	return result.RowsAffected == 0, nil
}
