// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zipeasy/zipeasy/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu       sync.RWMutex
	archives map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		archives: make(map[string][]byte),
	}
}

// SetArchive sets the data for an archive (for test setup).
// The data is copied to prevent caller mutations from affecting the store.
func (s *Store) SetArchive(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[key] = bytes.Clone(data)
}

// Data returns a copy of the data stored under key.
func (s *Store) Data(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.archives[key]
	return bytes.Clone(data), ok
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.archives))
	for k := range s.archives {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open returns the archive stored under key.
func (s *Store) Open(ctx context.Context, key string) (store.Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.archives[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return store.NewBytesArchive(data), nil
}

// Create buffers an archive in memory; it becomes visible on Commit.
func (s *Store) Create(ctx context.Context, key string) (store.Writer, error) {
	return &writer{store: s, key: key}, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

type writer struct {
	store *Store
	key   string
	buf   bytes.Buffer
}

func (w *writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *writer) Commit() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.archives[w.key] = w.buf.Bytes()
	return nil
}

func (w *writer) Discard() error {
	w.buf.Reset()
	return nil
}
