package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentals/internal/infra/bootstrap"
	"rentals/internal/infra/config"
	"rentals/internal/infra/obs"
)

const usage = `usage: catalogctl <command> [flags]

commands:
  import       load a dataset, remapping ids (-source, -clear)
  load-sample  load a dataset with its ids unless the catalog has data (-source)
  export       upload the catalog as GeoJSON to the S3 bucket (-key)
  migrate      prepare the schema of the configured store
  watch        print catalog events from Kafka (-group)
`

var errUsage = errors.New("invalid usage")

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
	slog.SetDefault(logger)

	err = run(ctx, cfg, logger, os.Args[1:])
	closeLogs()
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		logger.Error("catalogctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	switch name {
	case "import":
		source := fs.String("source", cfg.CatalogSource, "dataset file path or s3://key")
		clearFirst := fs.Bool("clear", false, "delete the current catalog first")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return importCatalog(ctx, cfg, logger, importOptions{Source: *source, Clear: *clearFirst})
	case "load-sample":
		source := fs.String("source", cfg.CatalogSource, "dataset file path or s3://key")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return importCatalog(ctx, cfg, logger, importOptions{Source: *source, PreserveIDs: true, SkipIfNotEmpty: true})
	case "export":
		key := fs.String("key", "exports/catalog-"+time.Now().UTC().Format("20060102T150405Z")+".geojson", "object key")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return exportCatalog(ctx, cfg, logger, *key)
	case "migrate":
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return migrate(ctx, cfg, logger)
	case "watch":
		group := fs.String("group", "catalogctl-watch", "Kafka consumer group")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		return watch(ctx, cfg, logger, *group)
	default:
		return errUsage
	}
}

func migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := bootstrap.OpenStore(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", store.Driver, err)
	}
	logger.Info("schema ready", slog.String("driver", store.Driver))
	return nil
}
