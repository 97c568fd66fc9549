// Package blobstore keeps media bytes on local disk, S3-compatible storage or
// Google Cloud Storage.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cowrite/internal/config"
	backupSvc "cowrite/internal/domain/services/backup"
)

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// New builds the store selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config) (backupSvc.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendLocal:
		return NewLocalStore(cfg.MediaDir)
	case config.BlobBackendS3:
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case config.BlobBackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	}
	return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}

// objectKey turns a storage path into a bucket object name.
func objectKey(key string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return cleaned, nil
}
