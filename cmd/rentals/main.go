package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentals/internal/app/catalogimport"
	"rentals/internal/app/commands"
	"rentals/internal/infra/bootstrap"
	"rentals/internal/infra/config"
	ginserver "rentals/internal/infra/http/gin"
	"rentals/internal/infra/obs"
	"rentals/internal/infra/outbox"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod").Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger, closeLogs := bootstrap.NewLogger(cfg)
	defer closeLogs()
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rentals stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := bootstrap.OpenStore(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("prepare store: %w", err)
	}

	producer, closeProducer, err := bootstrap.NewProducer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeProducer(); err != nil {
			logger.Warn("producer close failed", slog.Any("error", err))
		}
	}()
	events := outbox.NewStore()
	relay := bootstrap.NewRelay(cfg, events, producer, logger)
	relay.Source = "app://rentals/api"
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox relay stopped", slog.Any("error", err))
		}
	}()

	if cfg.CatalogSource != "" {
		cmdBus := bootstrap.CommandBus(store.Factory, outbox.NewBuffer(events), logger)
		if err := seedCatalog(ctx, cfg, cmdBus, logger); err != nil {
			logger.Warn("catalog seed failed", slog.String("source", cfg.CatalogSource), slog.Any("error", err))
		}
	}

	queryBus := bootstrap.QueryBus(store.Factory, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready:   store.Ping,
		Timeout: 2 * time.Second,
	}, ginserver.Handlers{
		Root:       ginserver.RootHandler(cfg.Env),
		Properties: ginserver.PropertyHandler{Queries: queryBus, BaseURL: cfg.PublicBaseURL},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", slog.Any("error", err))
		}
	}()

	logger.Info("HTTP server starting", slog.String("addr", cfg.HTTPAddr), slog.String("storage", store.Driver))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

// seedCatalog loads CATALOG_SOURCE once, keeping its ids. A catalog that
// already has rows is left alone.
func seedCatalog(ctx context.Context, cfg config.Config, bus commands.Bus, logger *slog.Logger) error {
	objects, err := bootstrap.NewDatasetStore(cfg, logger)
	if err != nil {
		return err
	}
	ds, err := bootstrap.LoadDataset(ctx, cfg.CatalogSource, objects)
	if err != nil {
		return err
	}
	_, err = commands.Dispatch[catalogimport.ImportCatalogCommand, catalogimport.Report](ctx, bus, catalogimport.ImportCatalogCommand{
		Source:         cfg.CatalogSource,
		Dataset:        ds,
		PreserveIDs:    true,
		SkipIfNotEmpty: true,
	})
	return err
}
