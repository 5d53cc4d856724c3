package storage

import (
	"context"
	"strings"
	"testing"

	cfg "github.com/saurab2057/Filetool/internal/config"
	"github.com/stretchr/testify/require"
)

func TestMinioEndpoint(t *testing.T) {
	tests := []struct {
		in         string
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", "localhost:9000", false},
		{"http://minio:9000", "minio:9000", false},
		{"https://files.example.com", "files.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, secure := minioEndpoint(tt.in)
			require.Equal(t, tt.wantHost, host)
			require.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestS3PublicURL(t *testing.T) {
	require.Equal(t, "https://avatars.s3.eu-west-1.amazonaws.com",
		s3PublicURL(S3Config{Bucket: "avatars", Region: "eu-west-1"}))
	require.Equal(t, "http://localhost:9000/avatars",
		s3PublicURL(S3Config{Bucket: "avatars", Endpoint: "http://localhost:9000/"}))
}

func TestNew_Disabled(t *testing.T) {
	s, err := New(context.Background(), &cfg.Config{StorageDriver: "none"})
	require.NoError(t, err)

	err = s.Save(context.Background(), "public/avatars/a.png", strings.NewReader("x"), 1, "image/png")
	require.ErrorIs(t, err, ErrDisabled)
	require.NoError(t, s.Delete(context.Background(), "public/avatars/a.png"))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), &cfg.Config{StorageDriver: "ftp"})
	require.Error(t, err)
}
