package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"rentals/internal/app/catalogimport"
	"rentals/internal/app/commands"
	"rentals/internal/infra/bootstrap"
	"rentals/internal/infra/config"
	"rentals/internal/infra/outbox"
)

const drainTimeout = 30 * time.Second

type importOptions struct {
	Source         string
	Clear          bool
	PreserveIDs    bool
	SkipIfNotEmpty bool
}

// importCatalog runs the import command and waits until its events are
// published before returning.
func importCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger, opts importOptions) error {
	if opts.Source == "" {
		return fmt.Errorf("%w: -source or CATALOG_SOURCE is required", errUsage)
	}
	objects, err := bootstrap.NewDatasetStore(cfg, logger)
	if err != nil {
		return err
	}
	ds, err := bootstrap.LoadDataset(ctx, opts.Source, objects)
	if err != nil {
		return err
	}

	store, err := bootstrap.OpenStore(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	producer, closeProducer, err := bootstrap.NewProducer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProducer()
	events := outbox.NewStore()
	bus := bootstrap.CommandBus(store.Factory, outbox.NewBuffer(events), logger)

	report, err := commands.Dispatch[catalogimport.ImportCatalogCommand, catalogimport.Report](ctx, bus, catalogimport.ImportCatalogCommand{
		Source:         opts.Source,
		Dataset:        ds,
		Clear:          opts.Clear,
		PreserveIDs:    opts.PreserveIDs,
		SkipIfNotEmpty: opts.SkipIfNotEmpty,
	})
	if err != nil {
		return err
	}

	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	if err := bootstrap.NewRelay(cfg, events, producer, logger).Drain(drainCtx); err != nil {
		return fmt.Errorf("publish events (%d pending): %w", events.Pending(), err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
