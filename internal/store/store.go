// Package store defines the storage backend interface for reading and
// writing archive files.
package store

import (
	"bytes"
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when an archive does not exist in the store.
	ErrNotFound = errors.New("store: archive not found")

	// ErrReadOnly is returned by Create on backends that cannot be written.
	ErrReadOnly = errors.New("store: backend is read-only")
)

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// Open returns the archive stored under key for random access.
	Open(ctx context.Context, key string) (Archive, error)

	// Create starts writing a new archive under key. Nothing is visible
	// to readers of remote backends until Commit succeeds.
	Create(ctx context.Context, key string) (Writer, error)

	// Close releases any resources held by the store.
	Close() error
}

// Archive is an opened archive file.
type Archive interface {
	io.ReaderAt

	// Size returns the archive length in bytes.
	Size() int64

	// Close releases the archive.
	Close() error
}

// Writer receives the bytes of an archive being created.
type Writer interface {
	io.Writer

	// Commit finishes the archive and makes it visible under its key.
	Commit() error

	// Discard abandons the archive. Local files keep whatever was
	// already written; remote uploads are cancelled.
	Discard() error
}

// BytesArchive is an Archive held entirely in memory.
type BytesArchive struct {
	*bytes.Reader
}

// Compile-time check that BytesArchive implements Archive.
var _ Archive = (*BytesArchive)(nil)

// NewBytesArchive returns an Archive reading from data.
func NewBytesArchive(data []byte) *BytesArchive {
	return &BytesArchive{Reader: bytes.NewReader(data)}
}

// Close is a no-op.
func (a *BytesArchive) Close() error {
	return nil
}

// ReadAll loads an archive fully into memory.
func ReadAll(a Archive) ([]byte, error) {
	return io.ReadAll(io.NewSectionReader(a, 0, a.Size()))
}
