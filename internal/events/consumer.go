package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer wraps a kafka-go reader in a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Consumer for the given group and topic.
func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

// Consume reads messages until the context is cancelled, passing each to the
// handler. A handler error stops consumption so the message is redelivered
// after restart.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
