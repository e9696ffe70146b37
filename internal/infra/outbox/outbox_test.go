package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appoutbox "rentals/internal/app/outbox"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	failures int
	sent     []published
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("broker down")
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func record(id, name, aggregate string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"property_id":7}`),
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  aggregate,
	}
}

func TestBufferFlushAndDiscard(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	buf := NewBuffer(store)

	_ = buf.Add(ctx, record("a", "property.imported", "1"))
	buf.Discard(ctx)
	if err := buf.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := store.Pending(); got != 0 {
		t.Fatalf("discarded records reached the store: got %d", got)
	}

	_ = buf.Add(ctx, record("b", "property.imported", "1"))
	_ = buf.Add(ctx, record("c", "catalog.cleared", "catalog"))
	if err := buf.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := store.Pending(); got != 2 {
		t.Fatalf("pending: got %d, want 2", got)
	}
}

func TestWorkerDrainPublishesCloudEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := NewStore()
	store.Enqueue(ctx, record("e1", "property.imported", "7"), record("e2", "catalog.cleared", "catalog"))

	producer := &fakeProducer{failures: 1}
	w := &Worker{
		Store:       store,
		Producer:    producer,
		Interval:    time.Millisecond,
		TopicPrefix: "rentals.",
		Backoff:     []time.Duration{0},
	}
	if err := w.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if store.Pending() != 0 {
		t.Fatalf("pending after drain: got %d, want 0", store.Pending())
	}
	if len(producer.sent) != 2 {
		t.Fatalf("sent: got %d, want 2", len(producer.sent))
	}

	first := producer.sent[0]
	if first.topic != "rentals.property" {
		t.Errorf("topic: got %s, want rentals.property", first.topic)
	}
	if first.key != "7" {
		t.Errorf("key: got %s, want 7", first.key)
	}
	if first.headers["content-type"] != "application/cloudevents+json" {
		t.Errorf("content-type: got %s", first.headers["content-type"])
	}
	var envelope map[string]any
	if err := json.Unmarshal(first.payload, &envelope); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if envelope["specversion"] != "1.0" || envelope["type"] != "property.imported.v1" || envelope["id"] != "e1" {
		t.Errorf("envelope: got %v", envelope)
	}
	if producer.sent[1].topic != "rentals.catalog" {
		t.Errorf("topic: got %s, want rentals.catalog", producer.sent[1].topic)
	}
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{Store: NewStore(), Producer: &fakeProducer{}, Interval: time.Millisecond}
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Drain(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Errorf("got %v, want ErrWorkerNotConfigured", err)
	}
}

func TestWorkerDropsUnreadableRecords(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bad := record("x1", "property.imported", "7")
	bad.Payload = []byte("[1,2]")
	store.Enqueue(ctx, bad, record("x2", "property.imported", "8"))

	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, Interval: time.Millisecond}
	if err := w.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(producer.sent) != 1 || producer.sent[0].key != "8" {
		t.Fatalf("sent: got %+v, want only the readable record", producer.sent)
	}
}
