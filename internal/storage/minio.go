package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage stores objects through the native MinIO client.
type MinIOStorage struct {
	client        *mclient.Client
	bucket        string
	presignExpiry time.Duration
}

type MinIOConfig struct {
	Endpoint      string // host:port or URL; an https scheme enables TLS
	Bucket        string
	AccessKey     string
	SecretKey     string
	PresignExpiry time.Duration
}

func NewMinIOStorage(ctx context.Context, c MinIOConfig) (*MinIOStorage, error) {
	const op = "storage/minio/New"

	endpoint, secure := minioEndpoint(c.Endpoint)

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, c.Bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: create bucket %q: %w", op, c.Bucket, err)
		}
		slog.Info("created MinIO bucket", "bucket", c.Bucket)
	}

	return &MinIOStorage{client: client, bucket: c.Bucket, presignExpiry: c.PresignExpiry}, nil
}

// minioEndpoint strips the scheme from endpoint and reports whether TLS is wanted.
func minioEndpoint(endpoint string) (string, bool) {
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Host, u.Scheme == "https"
	}
	return endpoint, secure
}

func (s *MinIOStorage) Save(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to MinIO: %w", err)
	}
	return nil
}

func (s *MinIOStorage) Delete(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, mclient.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}

func (s *MinIOStorage) URL(ctx context.Context, path string) string {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, s.presignExpiry, url.Values{})
	if err != nil {
		slog.Warn("failed to presign object url", "error", err, "path", path)
		return s.client.EndpointURL().String() + "/" + s.bucket + "/" + path
	}
	return u.String()
}

var (
	_ Storage = (*MinIOStorage)(nil)
	_ Storage = (*S3Storage)(nil)
	_ Storage = Disabled{}
)
