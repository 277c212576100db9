package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDedupe struct {
	seen    map[string]bool
	markErr error
}

func newFakeDedupe() *fakeDedupe {
	return &fakeDedupe{seen: make(map[string]bool)}
}

func (f *fakeDedupe) MarkProcessed(_ context.Context, bookingID uuid.UUID, eventType string) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	key := bookingID.String() + "/" + eventType
	if f.seen[key] {
		return true, nil
	}
	f.seen[key] = true
	return false, nil
}

func messageFor(t *testing.T, evt Envelope) kafkago.Message {
	t.Helper()
	payload, err := evt.Marshal()
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(evt.Key()), Value: payload}
}

func TestNotificationConsumerHandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("known event types are marked processed", func(t *testing.T) {
		dedupe := newFakeDedupe()
		nc := &NotificationConsumer{processed: dedupe, logger: zap.NewNop()}

		for _, eventType := range []string{BookingCreated, BookingAccepted, BookingCancelled} {
			evt := testEnvelope(eventType)
			require.NoError(t, nc.handleMessage(ctx, messageFor(t, evt)))
		}
		assert.Len(t, dedupe.seen, 3)
	})

	t.Run("redelivered event is skipped without error", func(t *testing.T) {
		dedupe := newFakeDedupe()
		nc := &NotificationConsumer{processed: dedupe, logger: zap.NewNop()}
		evt := testEnvelope(BookingCreated)
		msg := messageFor(t, evt)

		require.NoError(t, nc.handleMessage(ctx, msg))
		require.NoError(t, nc.handleMessage(ctx, msg))
		assert.Len(t, dedupe.seen, 1)
	})

	t.Run("same booking different event types are distinct", func(t *testing.T) {
		dedupe := newFakeDedupe()
		nc := &NotificationConsumer{processed: dedupe, logger: zap.NewNop()}
		created := testEnvelope(BookingCreated)
		accepted := created
		accepted.EventType = BookingAccepted

		require.NoError(t, nc.handleMessage(ctx, messageFor(t, created)))
		require.NoError(t, nc.handleMessage(ctx, messageFor(t, accepted)))
		assert.Len(t, dedupe.seen, 2)
	})

	t.Run("malformed payload is dropped without error", func(t *testing.T) {
		dedupe := newFakeDedupe()
		nc := &NotificationConsumer{processed: dedupe, logger: zap.NewNop()}

		err := nc.handleMessage(ctx, kafkago.Message{Value: []byte("{not json")})
		require.NoError(t, err)
		assert.Empty(t, dedupe.seen)
	})

	t.Run("unknown event type is ignored but marked processed", func(t *testing.T) {
		dedupe := newFakeDedupe()
		nc := &NotificationConsumer{processed: dedupe, logger: zap.NewNop()}
		evt := testEnvelope("BOOKING_EXPLODED")

		require.NoError(t, nc.handleMessage(ctx, messageFor(t, evt)))
		assert.Len(t, dedupe.seen, 1)
	})

	t.Run("dedupe store failure does not bubble up", func(t *testing.T) {
		dedupe := newFakeDedupe()
		dedupe.markErr = errors.New("db down")
		nc := &NotificationConsumer{processed: dedupe, logger: zap.NewNop()}

		err := nc.handleMessage(ctx, messageFor(t, testEnvelope(BookingCreated)))
		require.NoError(t, err)
	})
}
