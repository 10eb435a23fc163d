package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalStore keeps objects as files below a root directory.
type LocalStore struct {
	fs   afero.Fs
	root string
}

// NewLocalStore returns a store rooted at root. A nil fs means the OS filesystem.
func NewLocalStore(fs afero.Fs, root string) *LocalStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalStore{fs: fs, root: root}
}

// EnsureBucket creates the root directory.
func (l *LocalStore) EnsureBucket(ctx context.Context) error {
	return l.fs.MkdirAll(l.root, 0o755)
}

// Put writes r to key. An existing object is never overwritten.
func (l *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	name, err := l.path(key)
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := l.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = l.fs.Remove(name)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return f.Close()
}

// Get opens the object stored under key.
func (l *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	name, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := l.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the object stored under key.
func (l *LocalStore) Delete(ctx context.Context, key string) error {
	name, err := l.path(key)
	if err != nil {
		return err
	}
	if err := l.fs.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return err
	}
	return nil
}

func (l *LocalStore) path(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(cleaned)), nil
}
