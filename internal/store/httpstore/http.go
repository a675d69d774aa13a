// Package httpstore implements a read-only backend that downloads archives
// over HTTP(S).
package httpstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/store"
)

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store downloads archives addressed by URL. Keys are full URLs.
// Downloads are spooled to a temporary file and resumed with Range
// requests when the connection drops mid-transfer.
type Store struct {
	client   *http.Client
	tempDir  string
	retries  int
	progress progress.Func
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithTimeout sets the overall timeout for each HTTP request.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.client = &http.Client{
			Timeout: timeout,
		}
	}
}

// WithTempDir sets the directory downloads are spooled to.
func WithTempDir(dir string) Option {
	return func(s *Store) {
		s.tempDir = dir
	}
}

// WithRetries sets how many times an interrupted download is resumed.
func WithRetries(n int) Option {
	return func(s *Store) {
		s.retries = n
	}
}

// WithProgress reports download progress.
func WithProgress(fn progress.Func) Option {
	return func(s *Store) {
		s.progress = fn
	}
}

// New creates a new HTTP store.
func New(opts ...Option) *Store {
	s := &Store{
		client: &http.Client{
			Timeout: 0, // No overall timeout - we handle it per-request.
			Transport: &http.Transport{
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		retries:  2,
		progress: progress.Nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open downloads the archive at url into a temporary file. The file is
// removed when the archive is closed.
func (s *Store) Open(ctx context.Context, url string) (store.Archive, error) {
	f, err := os.CreateTemp(s.tempDir, "zipeasy-download-*.zip")
	if err != nil {
		return nil, fmt.Errorf("creating download file: %w", err)
	}

	fail := func(err error) (store.Archive, error) {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}

	var attempt int
	for {
		err = s.download(ctx, url, f)
		if err == nil {
			break
		}
		var rerr *resumableError
		if !errors.As(err, &rerr) || attempt >= s.retries || ctx.Err() != nil {
			return fail(err)
		}
		attempt++
	}

	info, err := f.Stat()
	if err != nil {
		return fail(fmt.Errorf("stat download file: %w", err))
	}
	return &tempArchive{File: f, size: info.Size()}, nil
}

// Create always fails; HTTP locations are read-only.
func (s *Store) Create(ctx context.Context, url string) (store.Writer, error) {
	return nil, fmt.Errorf("%w: %s", store.ErrReadOnly, url)
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// resumableError marks a transfer that failed after the response started;
// the next attempt continues from the bytes already on disk.
type resumableError struct {
	err error
}

func (e *resumableError) Error() string { return e.err.Error() }
func (e *resumableError) Unwrap() error { return e.err }

// download appends the remainder of url to f.
func (s *Store) download(ctx context.Context, url string, f *os.File) error {
	existing, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seeking download file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if existing > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existing))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	var total int64
	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the range; start over.
		if existing > 0 {
			if err := f.Truncate(0); err != nil {
				return fmt.Errorf("truncating download file: %w", err)
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("seeking download file: %w", err)
			}
			existing = 0
		}
		total = resp.ContentLength
	case http.StatusPartialContent:
		// Format: bytes 0-999/1234
		var start, end int64
		if _, err := fmt.Sscanf(resp.Header.Get("Content-Range"), "bytes %d-%d/%d", &start, &end, &total); err != nil {
			total = existing + resp.ContentLength
		}
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %s", store.ErrNotFound, url)
	default:
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var done atomic.Int64
	done.Store(existing)
	body := progress.NewReader(resp.Body, &done)

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing download file: %w", writeErr)
			}
			s.progress(progress.Progress{
				Op:         "download",
				Phase:      progress.PhaseDownload,
				Entry:      url,
				BytesDone:  done.Load(),
				BytesTotal: total,
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return &resumableError{err: fmt.Errorf("reading response: %w", err)}
		}
	}

	if total > 0 && done.Load() < total {
		return &resumableError{err: fmt.Errorf("short download: got %d of %d bytes", done.Load(), total)}
	}
	return nil
}

// tempArchive is a downloaded archive that deletes its file on Close.
type tempArchive struct {
	*os.File
	size int64
}

func (a *tempArchive) Size() int64 {
	return a.size
}

func (a *tempArchive) Close() error {
	err := a.File.Close()
	if rmErr := os.Remove(a.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}
