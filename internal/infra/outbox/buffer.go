package outbox

import (
	"context"
	"sync"

	appoutbox "rentals/internal/app/outbox"
)

// Buffer implements the application outbox: records added while a command
// runs are staged and reach the Store only on Flush. Commands sharing a Buffer
// must not run concurrently.
type Buffer struct {
	Store *Store

	mu     sync.Mutex
	staged []appoutbox.EventRecord
}

func NewBuffer(store *Store) *Buffer {
	return &Buffer{Store: store}
}

func (b *Buffer) Add(_ context.Context, record appoutbox.EventRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged = append(b.staged, record)
	return nil
}

func (b *Buffer) Flush(ctx context.Context) error {
	b.mu.Lock()
	staged := b.staged
	b.staged = nil
	b.mu.Unlock()
	if b.Store != nil && len(staged) > 0 {
		b.Store.Enqueue(ctx, staged...)
	}
	return nil
}

func (b *Buffer) Discard(context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged = nil
}

var _ appoutbox.Outbox = (*Buffer)(nil)
