package memory

import (
	"context"
	"errors"
	"sync"

	"rentals/internal/app/uow"
	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

var (
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrReadOnlyUnit         = errors.New("memory: catalog writes need a read-write unit")
	ErrUnitClosed           = errors.New("memory: unit already finished")
)

// Factory opens units over a Store. Read-only units read the live state
// under the store's read lock; write units stage a copy that replaces the
// live state on Commit. Write units are serialized.
type Factory struct {
	Store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	if opts.ReadOnly {
		return &Unit{store: f.Store, readOnly: true}, nil
	}
	f.Store.writeMu.Lock()
	f.Store.mu.RLock()
	staged := f.Store.state.clone()
	f.Store.mu.RUnlock()
	return &Unit{store: f.Store, staged: staged}, nil
}

func (f Factory) Ping(ctx context.Context) error {
	if f.Store == nil {
		return ErrFactoryMisconfigured
	}
	return nil
}

type Unit struct {
	store    *Store
	readOnly bool
	staged   *state
	once     sync.Once
	finished bool
}

func (u *Unit) view() *state {
	if u.readOnly {
		u.store.mu.RLock()
		return u.store.state
	}
	return u.staged
}

func (u *Unit) done() {
	if u.readOnly {
		u.store.mu.RUnlock()
	}
}

func (u *Unit) Properties() properties.Repository {
	return PropertyRepository{view: u.view, done: u.done}
}

func (u *Unit) Bookings() booking.Repository {
	return BookingRepository{view: u.view, done: u.done}
}

func (u *Unit) PricingRules() pricing.RuleRepository {
	return RuleRepository{view: u.view, done: u.done}
}

func (u *Unit) Catalog() uow.CatalogWriter {
	if u.readOnly {
		return readOnlyWriter{}
	}
	return CatalogWriter{st: u.staged}
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.readOnly {
		return nil
	}
	if u.finished {
		return ErrUnitClosed
	}
	u.store.mu.Lock()
	u.store.state = u.staged
	u.store.mu.Unlock()
	u.finish()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.readOnly || u.finished {
		return nil
	}
	u.staged = nil
	u.finish()
	return nil
}

func (u *Unit) finish() {
	u.once.Do(func() {
		u.finished = true
		u.store.writeMu.Unlock()
	})
}

type readOnlyWriter struct{}

func (readOnlyWriter) Clear(context.Context) (int, error) { return 0, ErrReadOnlyUnit }

func (readOnlyWriter) SaveProperty(context.Context, *properties.Property) (properties.ID, error) {
	return 0, ErrReadOnlyUnit
}

func (readOnlyWriter) SavePricingRules(context.Context, []pricing.Rule) error { return ErrReadOnlyUnit }

func (readOnlyWriter) SaveBookings(context.Context, []booking.Booking) error { return ErrReadOnlyUnit }

var _ uow.UoWFactory = Factory{}
