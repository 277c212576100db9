package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox row states.
const (
	outboxStateNew    = "NEW"
	outboxStateSent   = "SENT"
	outboxStateFailed = "FAILED"
)

// OutboxModel is the GORM model for the event outbox. Rows are written when
// direct publishing exhausts its retries and are replayed by the
// OutboxWorker.
type OutboxModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Topic         string    `gorm:"not null;size:100"`
	EventType     string    `gorm:"not null;size:50"`
	PartitionKey  string    `gorm:"not null;size:40;index"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	EventTime     time.Time `gorm:"not null"`
	State         string    `gorm:"not null;size:10;index:idx_outbox_pending,priority:1"`
	Attempts      int       `gorm:"not null;default:0"`
	NextAttemptAt time.Time `gorm:"not null;index:idx_outbox_pending,priority:2"`
	LastError     string    `gorm:"size:500"`
	CreatedAt     time.Time `gorm:"not null"`
	SentAt        *time.Time
}

// TableName returns the table name for the GORM model.
func (OutboxModel) TableName() string {
	return "event_outbox"
}

// OutboxStore persists events awaiting replay.
type OutboxStore struct {
	db *gorm.DB
}

// NewOutboxStore creates a new OutboxStore.
func NewOutboxStore(db *gorm.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

// Add records an event for later delivery.
func (s *OutboxStore) Add(ctx context.Context, topic string, evt Envelope, lastErr string) error {
	payload, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	row := &OutboxModel{
		ID:            uuid.New(),
		Topic:         topic,
		EventType:     evt.EventType,
		PartitionKey:  evt.Key(),
		Payload:       payload,
		EventTime:     evt.Timestamp,
		State:         outboxStateNew,
		NextAttemptAt: time.Now().UTC(),
		LastError:     lastErr,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to save outbox row: %w", err)
	}
	return nil
}

// ClaimNext returns the oldest due row pending delivery, or nil when the
// outbox has nothing to replay. Rows are claimed by event time, not insert
// time: when a full queue spills a newer event before its older siblings,
// replay still emits that booking's events in causal order.
func (s *OutboxStore) ClaimNext(ctx context.Context) (*OutboxModel, error) {
	var row OutboxModel
	err := s.db.WithContext(ctx).
		Where("state IN ? AND next_attempt_at <= ?", []string{outboxStateNew, outboxStateFailed}, time.Now().UTC()).
		Order("event_time ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim outbox row: %w", err)
	}
	return &row, nil
}

// HasPending reports whether the outbox still holds undelivered rows for a
// partition key. The publisher consults it before direct delivery so an
// event never overtakes an earlier one for the same booking.
func (s *OutboxStore) HasPending(ctx context.Context, partitionKey string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&OutboxModel{}).
		Where("partition_key = ? AND state IN ?", partitionKey, []string{outboxStateNew, outboxStateFailed}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count pending outbox rows: %w", err)
	}
	return count > 0, nil
}

// MarkSent records successful replay of a row.
func (s *OutboxStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&OutboxModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":   outboxStateSent,
			"sent_at": now,
		}).Error
}

// MarkFailed schedules another replay attempt for a row.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, next time.Time, errMsg string) error {
	return s.db.WithContext(ctx).Model(&OutboxModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":           outboxStateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
			"attempts":        gorm.Expr("attempts + 1"),
		}).Error
}
