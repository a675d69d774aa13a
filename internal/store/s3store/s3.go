// Package s3store implements an AWS S3 storage backend.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/zipeasy/zipeasy/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store is an AWS S3 storage backend.
// Archives are downloaded into memory on Open and spooled to a temporary
// file before upload on Create.
type Store struct {
	client  objectAPI
	bucket  string
	prefix  string
	tempDir string
}

// New creates a new S3 store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	s := &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucketName,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store) error

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) error {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *Store) error {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
		if err != nil {
			return fmt.Errorf("loading AWS config with region: %w", err)
		}
		s.client = s3.NewFromConfig(cfg)
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(s *Store) error {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return fmt.Errorf("loading AWS config for endpoint: %w", err)
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return nil
	}
}

// WithTempDir sets the directory used to spool archives before upload.
func WithTempDir(dir string) Option {
	return func(s *Store) error {
		s.tempDir = dir
		return nil
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

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", store.ErrNotFound, s.bucket, s.objectKey(key))
		}
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("downloading archive: %w", err)
	}

	return store.NewBytesArchive(data), nil
}

// Create spools the archive to a temporary file; Commit uploads it.
func (s *Store) Create(ctx context.Context, key string) (store.Writer, error) {
	f, err := os.CreateTemp(s.tempDir, "zipeasy-upload-*.zip")
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}
	return &spoolWriter{ctx: ctx, store: s, key: s.objectKey(key), f: f}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// objectKey returns the full object key for an archive.
func (s *Store) objectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/")
}

type spoolWriter struct {
	ctx   context.Context
	store *Store
	key   string
	f     *os.File
}

func (w *spoolWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

// Commit uploads the spooled archive and removes the spool file.
func (w *spoolWriter) Commit() error {
	defer w.cleanup()

	size, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("sizing spool file: %w", err)
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding spool file: %w", err)
	}

	_, err = w.store.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.store.bucket),
		Key:           aws.String(w.key),
		Body:          w.f,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		return fmt.Errorf("uploading archive: %w", err)
	}
	return nil
}

// Discard removes the spool file without uploading.
func (w *spoolWriter) Discard() error {
	return w.cleanup()
}

func (w *spoolWriter) cleanup() error {
	w.f.Close()
	if err := os.Remove(w.f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing spool file: %w", err)
	}
	return nil
}
