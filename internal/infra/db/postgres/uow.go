package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentals/internal/app/uow"
	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

var ErrFactoryMisconfigured = errors.New("postgres: unit of work factory misconfigured")

type Factory struct {
	Pool *pgxpool.Pool
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrFactoryMisconfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
		txOpts.IsoLevel = pgx.RepeatableRead
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Unit{tx: tx}, nil
}

func (f Factory) Ping(ctx context.Context) error {
	if f.Pool == nil {
		return ErrFactoryMisconfigured
	}
	return f.Pool.Ping(ctx)
}

type Unit struct {
	tx pgx.Tx
}

func (u *Unit) Properties() properties.Repository   { return PropertyRepository{db: u.tx} }
func (u *Unit) Bookings() booking.Repository         { return BookingRepository{db: u.tx} }
func (u *Unit) PricingRules() pricing.RuleRepository { return RuleRepository{db: u.tx} }
func (u *Unit) Catalog() uow.CatalogWriter           { return CatalogWriter{db: u.tx} }

func (u *Unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

var _ uow.UoWFactory = Factory{}
