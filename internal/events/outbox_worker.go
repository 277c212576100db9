package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReplayInterval = 5 * time.Second
	replayBackoffBase     = 10 * time.Second
	replayBackoffCap      = 5 * time.Minute
)

// OutboxWorker replays outbox rows that direct publishing could not deliver.
// Consumers must tolerate the replay arriving late or twice; the dedupe key
// is (booking id, event type).
type OutboxWorker struct {
	store    *OutboxStore
	producer producerPort
	interval time.Duration
	logger   *zap.Logger
}

// NewOutboxWorker creates a worker polling the outbox at the given interval.
// A non-positive interval falls back to the default.
func NewOutboxWorker(store *OutboxStore, producer producerPort, interval time.Duration, logger *zap.Logger) *OutboxWorker {
	if interval <= 0 {
		interval = defaultReplayInterval
	}
	return &OutboxWorker{
		store:    store,
		producer: producer,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain replays due rows until the outbox is empty or an attempt fails.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		row, err := w.store.ClaimNext(ctx)
		if err != nil {
			w.logger.Error("failed to read outbox", zap.Error(err))
			return
		}
		if row == nil {
			return
		}

		if err := w.producer.Publish(ctx, row.Topic, row.PartitionKey, row.Payload); err != nil {
			w.logger.Warn("outbox replay failed",
				zap.String("event_type", row.EventType),
				zap.String("booking_id", row.PartitionKey),
				zap.Int("attempts", row.Attempts+1),
				zap.Error(err),
			)
			if markErr := w.store.MarkFailed(ctx, row.ID, time.Now().UTC().Add(w.nextBackoff(row.Attempts)), err.Error()); markErr != nil {
				w.logger.Error("failed to mark outbox row failed", zap.Error(markErr))
			}
			return
		}

		if err := w.store.MarkSent(ctx, row.ID); err != nil {
			w.logger.Error("failed to mark outbox row sent", zap.Error(err))
			return
		}
		w.logger.Info("replayed event from outbox",
			zap.String("event_type", row.EventType),
			zap.String("booking_id", row.PartitionKey),
		)
	}
}

func (w *OutboxWorker) nextBackoff(attempts int) time.Duration {
	backoff := replayBackoffBase << attempts
	if backoff > replayBackoffCap || backoff <= 0 {
		return replayBackoffCap
	}
	return backoff
}
