package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// dedupePort abstracts the processed-events store for the consumer.
type dedupePort interface {
	MarkProcessed(ctx context.Context, bookingID uuid.UUID, eventType string) (bool, error)
}

// NotificationConsumer subscribes to booking events and hands each one off to
// the notification pipeline. Handling is idempotent: duplicate or replayed
// deliveries (keyed by booking id and event type) are skipped, and unknown
// event types are logged and ignored. Failures here never propagate back to
// the publisher.
type NotificationConsumer struct {
	consumer  *Consumer
	processed dedupePort
	logger    *zap.Logger
}

// NewNotificationConsumer creates a consumer on the booking events topic.
func NewNotificationConsumer(brokers []string, groupID string, processed *ProcessedStore, logger *zap.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		consumer:  NewConsumer(brokers, groupID, TopicBookingEvents),
		processed: processed,
		logger:    logger,
	}
}

// Start begins consuming booking events. Blocks until the context is
// cancelled.
func (c *NotificationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *NotificationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *NotificationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var evt Envelope
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.Error("failed to parse booking event",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // don't retry malformed messages
	}

	duplicate, err := c.processed.MarkProcessed(ctx, evt.Data.BookingID, evt.EventType)
	if err != nil {
		c.logger.Error("failed to check event idempotency",
			zap.String("event_type", evt.EventType),
			zap.String("booking_id", evt.Key()),
			zap.Error(err),
		)
		return nil
	}
	if duplicate {
		c.logger.Debug("skipping duplicate event",
			zap.String("event_type", evt.EventType),
			zap.String("booking_id", evt.Key()),
		)
		return nil
	}

	switch evt.EventType {
	case BookingCreated:
		c.logger.Info("notifying owner of new booking request",
			zap.String("booking_id", evt.Key()),
			zap.String("owner_id", evt.Data.OwnerID.String()),
			zap.String("traveler_id", evt.Data.TravelerID.String()),
			zap.Time("check_in", evt.Data.CheckIn),
			zap.Time("check_out", evt.Data.CheckOut),
		)
	case BookingAccepted:
		c.logger.Info("notifying traveler of accepted booking",
			zap.String("booking_id", evt.Key()),
			zap.String("traveler_id", evt.Data.TravelerID.String()),
		)
	case BookingCancelled:
		c.logger.Info("notifying both parties of cancelled booking",
			zap.String("booking_id", evt.Key()),
			zap.String("owner_id", evt.Data.OwnerID.String()),
			zap.String("traveler_id", evt.Data.TravelerID.String()),
		)
	default:
		c.logger.Warn("ignoring unknown booking event type",
			zap.String("event_type", evt.EventType),
		)
	}
	return nil
}
