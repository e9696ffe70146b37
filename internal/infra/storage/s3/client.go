package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const Scheme = "s3://"

var (
	ErrNotConfigured = errors.New("s3: dataset store is not configured")
	ErrObjectMissing = errors.New("s3: object not found")
)

// DatasetStore reads and writes catalog datasets in an S3-compatible bucket.
type DatasetStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client wraps a MinIO/S3 client bound to one bucket.
type Client struct {
	bucket         string
	client         *minio.Client
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, ErrNotConfigured
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	minioClient, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{bucket: bucket, client: minioClient, logger: logger}, nil
}

// Open streams an object. A missing object is reported as ErrObjectMissing.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("s3: get object %s: %w", key, err)
	}
	// GetObject is lazy; Stat surfaces a missing key before decoding starts.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectMissing, c.bucket, key)
		}
		return nil, fmt.Errorf("s3: stat object %s: %w", key, err)
	}
	return obj, nil
}

// Upload stores the content, creating the bucket on first use. A negative
// size streams with multipart upload.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if reader == nil {
		return errors.New("s3: reader is required")
	}
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := c.ensureBucket(ctx); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("s3: put object: %w", err)
	}
	c.logger.InfoContext(ctx, "s3 upload completed",
		slog.String("bucket", c.bucket),
		slog.String("key", key),
		slog.Int64("bytes", info.Size),
	)
	return nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketInitOnce.Do(func() {
		exists, err := c.client.BucketExists(ctx, c.bucket)
		if err != nil {
			c.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return c.bucketInitErr
}

// NoopStore fails fast when S3 is not configured.
type NoopStore struct{}

func (NoopStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, ErrNotConfigured
}

func (NoopStore) Upload(context.Context, string, io.Reader, int64, string) error {
	return ErrNotConfigured
}

// ObjectKey reports whether source names an object ("s3://datasets/x.json")
// and returns its key.
func ObjectKey(source string) (string, bool) {
	if !strings.HasPrefix(source, Scheme) {
		return "", false
	}
	key := strings.Trim(strings.TrimPrefix(source, Scheme), "/")
	return key, key != ""
}

func cleanKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	return key, nil
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var (
	_ DatasetStore = (*Client)(nil)
	_ DatasetStore = NoopStore{}
)
