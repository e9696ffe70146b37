package uow

import (
	"context"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

// UnitOfWork groups the catalog repositories behind one transaction boundary.
type UnitOfWork interface {
	Properties() properties.Repository
	Bookings() booking.Repository
	PricingRules() pricing.RuleRepository
	Catalog() CatalogWriter

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// CatalogWriter is the write side used by the importer. A zero ID on any
// entity asks the store to allocate one; a non-zero ID is kept as is.
type CatalogWriter interface {
	Clear(ctx context.Context) (int, error)
	SaveProperty(ctx context.Context, p *properties.Property) (properties.ID, error)
	SavePricingRules(ctx context.Context, rules []pricing.Rule) error
	SaveBookings(ctx context.Context, bookings []booking.Booking) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
