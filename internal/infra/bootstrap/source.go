package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"rentals/internal/app/catalogimport"
	"rentals/internal/infra/config"
	"rentals/internal/infra/storage/s3"
)

// NewDatasetStore returns the S3 client, or a NoopStore when no endpoint is set.
func NewDatasetStore(cfg config.Config, logger *slog.Logger) (s3.DatasetStore, error) {
	if cfg.S3Endpoint == "" {
		return s3.NoopStore{}, nil
	}
	client, err := s3.NewClient(s3.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
	}, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// LoadDataset reads and validates a dataset from a file path or an
// "s3://key" object.
func LoadDataset(ctx context.Context, source string, objects s3.DatasetStore) (catalogimport.Dataset, error) {
	var r io.ReadCloser
	if key, ok := s3.ObjectKey(source); ok {
		obj, err := objects.Open(ctx, key)
		if err != nil {
			return catalogimport.Dataset{}, err
		}
		r = obj
	} else {
		f, err := os.Open(source)
		if err != nil {
			return catalogimport.Dataset{}, fmt.Errorf("open dataset: %w", err)
		}
		r = f
	}
	defer r.Close()
	return catalogimport.Decode(r)
}
