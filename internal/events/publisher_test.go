package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedMessage struct {
	topic string
	key   string
	value []byte
}

// fakeProducer records publishes and can be told to fail or block.
type fakeProducer struct {
	mu       sync.Mutex
	messages []publishedMessage
	failsFor int           // fail this many calls before succeeding
	gate     chan struct{} // when set, Publish blocks until the gate closes
}

func (f *fakeProducer) Publish(_ context.Context, topic, key string, value []byte) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failsFor > 0 {
		f.failsFor--
		return errors.New("broker unreachable")
	}
	f.messages = append(f.messages, publishedMessage{topic: topic, key: key, value: value})
	return nil
}

func (f *fakeProducer) published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

type spilledEvent struct {
	topic   string
	evt     Envelope
	lastErr string
}

type fakeOutbox struct {
	mu     sync.Mutex
	rows   []spilledEvent
	addErr error
}

func (f *fakeOutbox) Add(_ context.Context, topic string, evt Envelope, lastErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.rows = append(f.rows, spilledEvent{topic: topic, evt: evt, lastErr: lastErr})
	return nil
}

func (f *fakeOutbox) HasPending(_ context.Context, partitionKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.evt.Key() == partitionKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOutbox) spilled() []spilledEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]spilledEvent, len(f.rows))
	copy(out, f.rows)
	return out
}

func testEnvelope(eventType string) Envelope {
	return NewEnvelope(eventType, BookingEventData{
		BookingID:  uuid.New(),
		PropertyID: uuid.New(),
		TravelerID: uuid.New(),
		OwnerID:    uuid.New(),
		Status:     "PENDING",
	})
}

func TestPublisherDeliversInOrder(t *testing.T) {
	producer := &fakeProducer{}
	outbox := &fakeOutbox{}
	pub := NewPublisher(producer, outbox, TopicBookingEvents, zap.NewNop())

	created := testEnvelope(BookingCreated)
	accepted := created
	accepted.EventType = BookingAccepted
	cancelled := created
	cancelled.EventType = BookingCancelled

	pub.Publish(created)
	pub.Publish(accepted)
	pub.Publish(cancelled)
	pub.Close()

	msgs := producer.published()
	require.Len(t, msgs, 3)
	assert.Empty(t, outbox.spilled())

	var got []string
	for _, m := range msgs {
		assert.Equal(t, TopicBookingEvents, m.topic)
		assert.Equal(t, created.Data.BookingID.String(), m.key)
		var env Envelope
		require.NoError(t, json.Unmarshal(m.value, &env))
		got = append(got, env.EventType)
	}
	assert.Equal(t, []string{BookingCreated, BookingAccepted, BookingCancelled}, got)
}

func TestPublisherRetriesTransientFailures(t *testing.T) {
	producer := &fakeProducer{failsFor: 2}
	outbox := &fakeOutbox{}
	pub := NewPublisher(producer, outbox, TopicBookingEvents, zap.NewNop(),
		WithMaxAttempts(4),
		WithBaseBackoff(time.Millisecond),
	)

	pub.Publish(testEnvelope(BookingCreated))
	pub.Close()

	assert.Len(t, producer.published(), 1, "third attempt should succeed")
	assert.Empty(t, outbox.spilled())
}

func TestPublisherSpillsToOutboxAfterRetriesExhausted(t *testing.T) {
	producer := &fakeProducer{failsFor: 100}
	outbox := &fakeOutbox{}
	pub := NewPublisher(producer, outbox, TopicBookingEvents, zap.NewNop(),
		WithMaxAttempts(3),
		WithBaseBackoff(time.Millisecond),
	)

	evt := testEnvelope(BookingAccepted)
	pub.Publish(evt)
	pub.Close()

	assert.Empty(t, producer.published())
	rows := outbox.spilled()
	require.Len(t, rows, 1)
	assert.Equal(t, TopicBookingEvents, rows[0].topic)
	assert.Equal(t, BookingAccepted, rows[0].evt.EventType)
	assert.Equal(t, evt.Data.BookingID, rows[0].evt.Data.BookingID)
	assert.Equal(t, "broker unreachable", rows[0].lastErr)
}

func TestPublisherQueuesBehindSpilledEventsForSameBooking(t *testing.T) {
	// Two failed attempts spill the first event; by then the broker has
	// recovered, so a naive publisher would deliver the second event
	// directly and the topic would carry BOOKING_ACCEPTED with
	// BOOKING_CREATED still stuck in the outbox.
	producer := &fakeProducer{failsFor: 2}
	outbox := &fakeOutbox{}
	pub := NewPublisher(producer, outbox, TopicBookingEvents, zap.NewNop(),
		WithMaxAttempts(2),
		WithBaseBackoff(time.Millisecond),
	)

	created := testEnvelope(BookingCreated)
	accepted := created
	accepted.EventType = BookingAccepted
	other := testEnvelope(BookingCreated)

	pub.Publish(created)
	pub.Publish(accepted)
	pub.Publish(other)
	pub.Close()

	rows := outbox.spilled()
	require.Len(t, rows, 2)
	assert.Equal(t, BookingCreated, rows[0].evt.EventType)
	assert.Equal(t, BookingAccepted, rows[1].evt.EventType)
	assert.Equal(t, created.Data.BookingID, rows[1].evt.Data.BookingID)
	assert.Equal(t, "queued behind earlier undelivered event", rows[1].lastErr)

	// An unrelated booking is not held up by the stuck one.
	msgs := producer.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, other.Data.BookingID.String(), msgs[0].key)
}

func TestPublisherSpillsWhenQueueIsFull(t *testing.T) {
	gate := make(chan struct{})
	producer := &fakeProducer{gate: gate}
	outbox := &fakeOutbox{}
	pub := NewPublisher(producer, outbox, TopicBookingEvents, zap.NewNop(), WithQueueSize(1))

	first := testEnvelope(BookingCreated)
	pub.Publish(first) // picked up by the worker, blocked on the gate

	// Wait for the worker to take the first event off the queue.
	require.Eventually(t, func() bool {
		select {
		case pub.queue <- testEnvelope(BookingAccepted):
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond, "worker never picked up the first event")

	// Queue is full again; the next publish must spill, not block.
	overflow := testEnvelope(BookingCancelled)
	done := make(chan struct{})
	go func() {
		pub.Publish(overflow)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	rows := outbox.spilled()
	require.Len(t, rows, 1)
	assert.Equal(t, overflow.Data.BookingID, rows[0].evt.Data.BookingID)
	assert.Equal(t, "publish queue full", rows[0].lastErr)

	close(gate)
	pub.Close()
	assert.Len(t, producer.published(), 2)
}

func TestOutboxWorkerBackoffGrowsAndCaps(t *testing.T) {
	w := NewOutboxWorker(nil, nil, 0, zap.NewNop())
	assert.Equal(t, 10*time.Second, w.nextBackoff(0))
	assert.Equal(t, 20*time.Second, w.nextBackoff(1))
	assert.Equal(t, 40*time.Second, w.nextBackoff(2))
	assert.Equal(t, 5*time.Minute, w.nextBackoff(10))
	assert.Equal(t, 5*time.Minute, w.nextBackoff(63), "shift overflow must not go negative")
}
