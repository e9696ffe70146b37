package events

import "time"

// DomainEvent is anything an aggregate records for the outbox. AggregateID
// becomes the message key, so events of one aggregate stay ordered.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates. Events wait here until the caller
// has persisted the aggregate and pulls them.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

// PullEvents hands over the recorded events and forgets them.
func (r *EventRecorder) PullEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
