// Package diskstore implements a local filesystem storage backend.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zipeasy/zipeasy/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a local filesystem storage backend.
type Store struct {
	root string
}

// New creates a new disk store. Relative keys are resolved against root;
// an empty root means keys are used as given. A non-empty root must be an
// existing directory.
func New(root string) (*Store, error) {
	if root != "" {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat root directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", root)
		}
	}

	return &Store{root: root}, nil
}

// Open opens the archive file at key.
func (s *Store) Open(ctx context.Context, key string) (store.Archive, error) {
	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path := s.Path(key)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("opening archive: %s is a directory", path)
	}

	return &fileArchive{File: f, size: info.Size()}, nil
}

// Create creates (or truncates) the archive file at key, creating parent
// directories as needed.
func (s *Store) Create(ctx context.Context, key string) (store.Writer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating parent directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	return &fileWriter{f: f}, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// Path returns the filesystem path for a key.
func (s *Store) Path(key string) string {
	if s.root == "" || filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.root, key)
}

type fileArchive struct {
	*os.File
	size int64
}

func (a *fileArchive) Size() int64 { return a.size }

type fileWriter struct {
	f *os.File
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Commit flushes the file to disk and closes it.
func (w *fileWriter) Commit() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("syncing archive: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// Discard closes the file, leaving the partial archive in place.
func (w *fileWriter) Discard() error {
	return w.f.Close()
}
