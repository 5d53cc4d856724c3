package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/saurab2057/Filetool/internal/config"
)

// ErrDisabled is returned by Save when no object storage is configured.
var ErrDisabled = errors.New("object storage is disabled")

// Storage stores user uploaded objects such as avatars.
type Storage interface {
	// Save stores size bytes from r at path.
	Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) error

	// Delete removes the object at path.
	Delete(ctx context.Context, path string) error

	// URL returns a URL the browser can load the object from.
	URL(ctx context.Context, path string) string
}

// New builds the storage selected by STORAGE_DRIVER.
func New(ctx context.Context, c *cfg.Config) (Storage, error) {
	slog.Info("initializing object storage",
		"driver", c.StorageDriver,
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)

	switch c.StorageDriver {
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Region:              c.S3Region,
			Bucket:              c.S3Bucket,
			AccessKey:           c.S3AccessKey,
			SecretKey:           c.S3SecretKey,
			Endpoint:            c.S3Endpoint,
			PresignExpiryPublic: c.S3PresignExpiryPublic,
		})
	case "minio":
		return NewMinIOStorage(ctx, MinIOConfig{
			Endpoint:      c.S3Endpoint,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			PresignExpiry: c.S3PresignExpiryPublic,
		})
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// Disabled rejects every write. Used when avatars are not supported by the deployment.
type Disabled struct{}

func (Disabled) Save(context.Context, string, io.Reader, int64, string) error { return ErrDisabled }
func (Disabled) Delete(context.Context, string) error { return nil }
func (Disabled) URL(context.Context, string) string { return "" }
