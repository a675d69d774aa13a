package cachedstore

import (
	"context"
	"fmt"

	"github.com/zipeasy/zipeasy/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with caching.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Open returns an archive, checking the cache first.
func (s *Store) Open(ctx context.Context, key string) (store.Archive, error) {
	// Check cache first.
	if data, ok := s.backend.Get(key); ok {
		return store.NewBytesArchive(data), nil
	}

	// Cache miss - read from underlying store.
	a, err := s.underlying.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	data, err := store.ReadAll(a)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	// Cache the result.
	s.backend.Set(key, data)

	return store.NewBytesArchive(data), nil
}

// Create writes through to the underlying store. A committed archive
// replaces any cached copy.
func (s *Store) Create(ctx context.Context, key string) (store.Writer, error) {
	w, err := s.underlying.Create(ctx, key)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{Writer: w, key: key, backend: s.backend}, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}

type invalidatingWriter struct {
	store.Writer
	key     string
	backend Backend
}

func (w *invalidatingWriter) Commit() error {
	defer w.backend.Remove(w.key)
	return w.Writer.Commit()
}
