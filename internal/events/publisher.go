package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// producerPort abstracts the Kafka producer for the publisher.
type producerPort interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// outboxPort abstracts the durable fallback store.
type outboxPort interface {
	Add(ctx context.Context, topic string, evt Envelope, lastErr string) error
	HasPending(ctx context.Context, partitionKey string) (bool, error)
}

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 4
	defaultBaseBackoff = 200 * time.Millisecond
	publishTimeout     = 5 * time.Second
)

// Publisher delivers booking events off the request path. A single worker
// goroutine drains a FIFO queue, so events enqueued for the same booking go
// out in order. Each event is retried with bounded exponential backoff and,
// when the bus stays unreachable, written to the outbox for later replay.
// While a booking has undelivered outbox rows its newer events spill there
// too, so the topic always sees that booking's events in order.
// Enqueueing never blocks and never fails the caller's operation.
type Publisher struct {
	producer    producerPort
	outbox      outboxPort
	topic       string
	logger      *zap.Logger
	queue       chan Envelope
	maxAttempts int
	baseBackoff time.Duration
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// PublisherOption customizes a Publisher.
type PublisherOption func(*Publisher)

// WithMaxAttempts bounds the direct-publish retry count.
func WithMaxAttempts(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithBaseBackoff sets the first retry delay; each retry doubles it.
func WithBaseBackoff(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.baseBackoff = d
		}
	}
}

// WithQueueSize sets the enqueue buffer size.
func WithQueueSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan Envelope, n)
		}
	}
}

// NewPublisher creates a Publisher and starts its worker.
func NewPublisher(producer producerPort, outbox outboxPort, topic string, logger *zap.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		producer:    producer,
		outbox:      outbox,
		topic:       topic,
		logger:      logger,
		queue:       make(chan Envelope, defaultQueueSize),
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish enqueues an event for background delivery. When the queue is full
// the event goes straight to the outbox so the caller still never waits on
// the bus.
func (p *Publisher) Publish(evt Envelope) {
	select {
	case p.queue <- evt:
	default:
		p.logger.Warn("publish queue full, spilling event to outbox",
			zap.String("event_type", evt.EventType),
			zap.String("booking_id", evt.Key()),
		)
		p.spill(evt, "publish queue full")
	}
}

// Close drains the queue and stops the worker.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for evt := range p.queue {
		p.deliver(evt)
	}
}

func (p *Publisher) deliver(evt Envelope) {
	payload, err := evt.Marshal()
	if err != nil {
		p.logger.Error("failed to marshal event",
			zap.String("event_type", evt.EventType),
			zap.Error(err),
		)
		return
	}

	// Once an earlier event for this booking sits in the outbox, later ones
	// must queue behind it: delivering them directly would put the topic out
	// of causal order for that booking.
	checkCtx, checkCancel := context.WithTimeout(context.Background(), publishTimeout)
	pending, err := p.outbox.HasPending(checkCtx, evt.Key())
	checkCancel()
	if err != nil {
		p.logger.Error("failed to check outbox for pending events",
			zap.String("booking_id", evt.Key()),
			zap.Error(err),
		)
	} else if pending {
		p.spill(evt, "queued behind earlier undelivered event")
		return
	}

	backoff := p.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		lastErr = p.producer.Publish(ctx, p.topic, evt.Key(), payload)
		cancel()
		if lastErr == nil {
			return
		}
		p.logger.Warn("event publish attempt failed",
			zap.String("event_type", evt.EventType),
			zap.String("booking_id", evt.Key()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt < p.maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	p.spill(evt, lastErr.Error())
}

func (p *Publisher) spill(evt Envelope, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.outbox.Add(ctx, p.topic, evt, reason); err != nil {
		// Last resort: the transition already committed, so all we can do is
		// leave a loud trace for operators.
		p.logger.Error("failed to write event to outbox, event lost",
			zap.String("event_type", evt.EventType),
			zap.String("booking_id", evt.Key()),
			zap.Error(err),
		)
	}
}
