package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"rentals/internal/app/uow"
	"rentals/internal/infra/cache"
	"rentals/internal/infra/config"
	"rentals/internal/infra/db/mongo"
	"rentals/internal/infra/db/postgres"
	"rentals/internal/infra/storage/memory"
)

// Store is an opened catalog backend.
type Store struct {
	Driver  string
	Factory uow.UoWFactory
	// Migrate prepares the schema (tables or indexes); a no-op in memory.
	Migrate func(ctx context.Context) error
	Close   func(ctx context.Context)

	pinger interface{ Ping(ctx context.Context) error }
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pinger.Ping(ctx)
}

// OpenStore connects the backend STORAGE_DRIVER names. withCache wraps it in
// the property cache, which the HTTP server wants and one-shot CLI runs do not.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger, withCache bool) (*Store, error) {
	var st *Store
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		factory := postgres.Factory{Pool: pool}
		st = &Store{
			Driver:  cfg.StorageDriver,
			Factory: factory,
			Migrate: func(ctx context.Context) error { return postgres.Migrate(ctx, pool) },
			Close:   func(context.Context) { pool.Close() },
			pinger:  factory,
		}
	case config.DriverMongo:
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		factory := mongo.Factory{DB: client.DB}
		st = &Store{
			Driver:  cfg.StorageDriver,
			Factory: factory,
			Migrate: func(ctx context.Context) error { return mongo.EnsureIndexes(ctx, client.DB) },
			Close: func(ctx context.Context) {
				if err := client.Close(ctx); err != nil {
					logger.Warn("mongo disconnect failed", slog.Any("error", err))
				}
			},
			pinger: factory,
		}
	case config.DriverMemory, "":
		factory := memory.Factory{Store: memory.NewStore()}
		st = &Store{
			Driver:  config.DriverMemory,
			Factory: factory,
			Migrate: func(context.Context) error { return nil },
			Close:   func(context.Context) {},
			pinger:  factory,
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if withCache {
		c := cache.New(cache.Config{
			TTL:           cfg.CacheTTL,
			Size:          cfg.CacheSize,
			MemcachedAddr: cfg.MemcachedAddr,
			Logger:        logger,
		})
		st.Factory = cache.Factory{Next: st.Factory, Cache: c}
		closeStore := st.Close
		st.Close = func(ctx context.Context) {
			c.Close()
			closeStore(ctx)
		}
	}
	logger.Info("catalog store opened", slog.String("driver", st.Driver), slog.Bool("cache", withCache))
	return st, nil
}
