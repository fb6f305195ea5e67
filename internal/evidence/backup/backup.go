// Package backup writes evidence bytes to the S3-compatible backup object
// store. Every write is best-effort: the archiver logs and swallows failures
// here, so nothing in this package may be load-bearing.
package backup

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"cybercell/internal/platform/config"
)

// Store persists a backup copy of evidence bytes.
type Store interface {
	Put(ctx context.Context, name string, contentType string, content []byte) error
}

// ObjectStore implements Store on a MinIO/S3 bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// New connects to the configured bucket. Returns nil when no endpoint is
// configured (backup disabled).
func New(cfg config.BackupConfig) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect backup store: %w", err)
	}
	return &ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *ObjectStore) Put(ctx context.Context, name string, contentType string, content []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, "evidence/"+name,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("backup put %s: %w", name, err)
	}
	return nil
}

// Noop discards writes; used when backup is not configured.
type Noop struct{}

func (Noop) Put(context.Context, string, string, []byte) error { return nil }
