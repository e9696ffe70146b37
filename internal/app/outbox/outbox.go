package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentals/internal/domain/shared/events"
)

// EventRecord is an encoded domain event waiting to be published.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox stages records for the running command. Flush hands them to the
// relay after commit; Discard drops them when the command fails.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
	Discard(ctx context.Context)
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event itself as the payload. Zero fields fall
// back to a random id and the current time.
type JSONEventEncoder struct {
	IDGenerator func() string
	Now         func() time.Time
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("outbox: encode %s: %w", ev.EventName(), err)
	}
	id := uuid.NewString
	if e.IDGenerator != nil {
		id = e.IDGenerator
	}
	occurred := ev.OccurredAt()
	if occurred.IsZero() {
		if e.Now != nil {
			occurred = e.Now()
		} else {
			occurred = time.Now()
		}
	}
	return EventRecord{
		ID:         id(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: occurred.UTC(),
		Aggregate:  ev.AggregateID(),
	}, nil
}

// Record encodes evs in order and stages them in box. A nil box means the
// caller does not publish events.
func Record(ctx context.Context, box Outbox, encoder EventEncoder, evs ...events.DomainEvent) error {
	if box == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
