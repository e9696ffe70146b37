package inbox

import (
	"time"

	"github.com/karlseguin/ccache/v3"
)

// Store remembers event ids a consumer has handled so redelivered events
// (Kafka replays after a rebalance) are processed once within the window.
type Store struct {
	seen     *ccache.Cache[struct{}]
	consumer string
	window   time.Duration
}

func NewStore(consumer string, size int64, window time.Duration) *Store {
	if size <= 0 {
		size = 10000
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Store{
		seen:     ccache.New(ccache.Configure[struct{}]().MaxSize(size)),
		consumer: consumer,
		window:   window,
	}
}

// Seen records eventID and reports whether it had been recorded before.
func (s *Store) Seen(eventID string) bool {
	key := s.consumer + "/" + eventID
	if item := s.seen.Get(key); item != nil && !item.Expired() {
		return true
	}
	s.seen.Set(key, struct{}{}, s.window)
	return false
}

func (s *Store) Close() {
	s.seen.Stop()
}
