package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"rentals/internal/app/uow"
	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

var (
	ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")
	ErrReadOnlyUnit            = errors.New("mongo: unit of work is read-only")
)

// Factory wires Mongo sessions into the generic UnitOfWork interface. Write
// units run in a multi-document transaction, which needs a replica set; read
// units skip the session.
type Factory struct {
	DB *mongo.Database
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	if opts.ReadOnly {
		return &Unit{db: f.DB, readOnly: true}, nil
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, fmt.Errorf("start transaction: %w", err)
	}
	return &Unit{db: f.DB, session: session}, nil
}

func (f Factory) Ping(ctx context.Context) error {
	if f.DB == nil {
		return ErrUnitOfWorkNotConfigured
	}
	return f.DB.Client().Ping(ctx, nil)
}

type Unit struct {
	db       *mongo.Database
	session  mongo.Session
	readOnly bool
	ended    bool
}

func (u *Unit) Properties() properties.Repository   { return NewPropertyRepository(u.db) }
func (u *Unit) Bookings() booking.Repository         { return NewBookingRepository(u.db) }
func (u *Unit) PricingRules() pricing.RuleRepository { return NewRuleRepository(u.db) }

func (u *Unit) Catalog() uow.CatalogWriter {
	if u.readOnly {
		return readOnlyWriter{}
	}
	return NewCatalogWriter(u.db)
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.session == nil || u.ended {
		return nil
	}
	defer u.end(ctx)
	return u.session.CommitTransaction(ctx)
}

// Rollback is a no-op once Commit ran, even if the commit failed: the server
// aborts a transaction whose commit did not go through.
func (u *Unit) Rollback(ctx context.Context) error {
	if u.session == nil || u.ended {
		return nil
	}
	defer u.end(ctx)
	return u.session.AbortTransaction(ctx)
}

func (u *Unit) end(ctx context.Context) {
	u.ended = true
	u.session.EndSession(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if u.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, u.session)
}

type readOnlyWriter struct{}

func (readOnlyWriter) Clear(context.Context) (int, error) { return 0, ErrReadOnlyUnit }
func (readOnlyWriter) SaveProperty(context.Context, *properties.Property) (properties.ID, error) {
	return 0, ErrReadOnlyUnit
}
func (readOnlyWriter) SavePricingRules(context.Context, []pricing.Rule) error { return ErrReadOnlyUnit }
func (readOnlyWriter) SaveBookings(context.Context, []booking.Booking) error  { return ErrReadOnlyUnit }

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
