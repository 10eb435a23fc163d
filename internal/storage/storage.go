package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"socios/internal/config"
)

// ErrObjectNotFound is returned (wrapped) when a key has no stored object.
var ErrObjectNotFound = errors.New("object not found")

// BlobStore holds uploaded document files addressed by key.
type BlobStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(nil, cfg.LocalDir), nil
	case "minio":
		return NewMinioClient(cfg.Minio)
	case "gcs":
		return NewGCSClient(ctx, cfg.GCS)
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
}

// Close releases the client behind s when it holds one.
func Close(s BlobStore) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("object key is required")
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != key {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}
