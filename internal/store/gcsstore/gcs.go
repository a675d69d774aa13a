// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/zipeasy/zipeasy/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// objects is the subset of bucket operations the store uses.
type objects interface {
	NewReader(ctx context.Context, name string) (io.ReadCloser, error)
	NewWriter(ctx context.Context, name string) io.WriteCloser
}

// bucketObjects adapts a *storage.BucketHandle to objects.
type bucketObjects struct {
	bucket *storage.BucketHandle
}

func (b bucketObjects) NewReader(ctx context.Context, name string) (io.ReadCloser, error) {
	return b.bucket.Object(name).NewReader(ctx)
}

func (b bucketObjects) NewWriter(ctx context.Context, name string) io.WriteCloser {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/zip"
	return w
}

// Store is a Google Cloud Storage backend.
type Store struct {
	client  *storage.Client
	bucket  string
	objects objects
	prefix  string
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client:  client,
		bucket:  bucketName,
		objects: bucketObjects{bucket: client.Bucket(bucketName)},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// Open downloads the archive stored under key.
func (s *Store) Open(ctx context.Context, key string) (store.Archive, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reader, err := s.objects.NewReader(ctx, s.objectKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", store.ErrNotFound, s.bucket, s.objectKey(key))
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("downloading archive: %w", err)
	}

	return store.NewBytesArchive(data), nil
}

// Create streams the archive to a new object. The object only appears once
// Commit closes the writer; Discard cancels the upload.
func (s *Store) Create(ctx context.Context, key string) (store.Writer, error) {
	ctx, cancel := context.WithCancel(ctx)
	return &objectWriter{
		w:      s.objects.NewWriter(ctx, s.objectKey(key)),
		cancel: cancel,
	}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// objectKey returns the full object key for an archive.
func (s *Store) objectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/")
}

type objectWriter struct {
	w      io.WriteCloser
	cancel context.CancelFunc
}

func (o *objectWriter) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

func (o *objectWriter) Commit() error {
	defer o.cancel()
	if err := o.w.Close(); err != nil {
		return fmt.Errorf("finalizing upload: %w", err)
	}
	return nil
}

func (o *objectWriter) Discard() error {
	o.cancel()
	// Close reports the cancellation; the object is not created.
	o.w.Close()
	return nil
}
