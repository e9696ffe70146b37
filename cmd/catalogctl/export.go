package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"rentals/internal/app/dto"
	propertiesapp "rentals/internal/app/handlers/properties"
	"rentals/internal/app/queries"
	"rentals/internal/infra/bootstrap"
	"rentals/internal/infra/config"
)

// exportCatalog uploads the GeoJSON view of every property.
func exportCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger, key string) error {
	objects, err := bootstrap.NewDatasetStore(cfg, logger)
	if err != nil {
		return err
	}
	store, err := bootstrap.OpenStore(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	bus := bootstrap.QueryBus(store.Factory, logger)
	fc, err := queries.Ask[propertiesapp.GeoJSONQuery, dto.FeatureCollection](ctx, bus, propertiesapp.GeoJSONQuery{})
	if err != nil {
		return err
	}
	raw, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := objects.Upload(ctx, key, bytes.NewReader(raw), int64(len(raw)), "application/geo+json"); err != nil {
		return err
	}
	logger.Info("catalog exported",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("key", key),
		slog.Int("features", len(fc.Features)),
	)
	return nil
}
