package outbox

import (
	"context"
	"sync"
	"time"

	appoutbox "rentals/internal/app/outbox"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateFailed  = "FAILED"
)

// Store holds committed records until the worker has published them. It
// lives in process: the catalog commands that emit events run in catalogctl,
// which drains the store before exiting.
type Store struct {
	mu      sync.Mutex
	records []*EventDocument
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

type EventDocument struct {
	ID          string
	Name        string
	Payload     []byte
	OccurredAt  time.Time
	Aggregate   string
	Headers     map[string]string
	State       string
	Attempts    int
	NextAttempt time.Time
	ClaimedBy   string
	ClaimedAt   time.Time
	LastError   string
}

func (s *Store) Enqueue(_ context.Context, records ...appoutbox.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, record := range records {
		s.records = append(s.records, &EventDocument{
			ID:          record.ID,
			Name:        record.Name,
			Payload:     record.Payload,
			OccurredAt:  record.OccurredAt,
			Aggregate:   record.Aggregate,
			Headers:     record.Headers,
			State:       stateNew,
			NextAttempt: now,
		})
	}
}

// Claim hands out the oldest due record, or nil when nothing is due.
func (s *Store) Claim(_ context.Context, workerID string) (*EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, doc := range s.records {
		if (doc.State == stateNew || doc.State == stateFailed) && !doc.NextAttempt.After(now) {
			doc.State = stateClaimed
			doc.ClaimedBy = workerID
			doc.ClaimedAt = now
			out := *doc
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) MarkSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, doc := range s.records {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	s.records = kept
	return nil
}

func (s *Store) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.records {
		if doc.ID == id {
			doc.State = stateFailed
			doc.NextAttempt = next
			doc.LastError = errMsg
			doc.Attempts++
		}
	}
	return nil
}

// Pending counts records not yet published.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
