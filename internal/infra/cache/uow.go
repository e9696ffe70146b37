package cache

import (
	"context"

	"rentals/internal/app/uow"
	"rentals/internal/domain/properties"
)

// Factory decorates a store's unit of work: property lookups by id go through
// the cache, and a committed write unit invalidates it.
type Factory struct {
	Next  uow.UoWFactory
	Cache *PropertyCache
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.Next.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	if f.Cache == nil {
		return unit, nil
	}
	return &Unit{UnitOfWork: unit, cache: f.Cache, write: !opts.ReadOnly}, nil
}

// Ping forwards to the wrapped factory when it can be pinged.
func (f Factory) Ping(ctx context.Context) error {
	if p, ok := f.Next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

type Unit struct {
	uow.UnitOfWork
	cache *PropertyCache
	write bool
}

func (u *Unit) Properties() properties.Repository {
	return Repository{Repository: u.UnitOfWork.Properties(), cache: u.cache, bypass: u.write}
}

func (u *Unit) Commit(ctx context.Context) error {
	if err := u.UnitOfWork.Commit(ctx); err != nil {
		return err
	}
	if u.write {
		u.cache.Invalidate(ctx)
	}
	return nil
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if injector, ok := u.UnitOfWork.(uow.ContextInjector); ok {
		return injector.InjectContext(ctx)
	}
	return ctx
}

// Repository serves ByID from the cache. Write units bypass it so they see
// their own uncommitted rows.
type Repository struct {
	properties.Repository
	cache  *PropertyCache
	bypass bool
}

func (r Repository) ByID(ctx context.Context, id properties.ID) (*properties.Property, error) {
	if r.bypass {
		return r.Repository.ByID(ctx, id)
	}
	if p, ok := r.cache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := r.Repository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, p)
	return p, nil
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
