// Package zipeasy packs a folder into a zip archive and unpacks a zip
// archive into a folder.
//
// Example usage:
//
//	client, err := zipeasy.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.Compress(ctx, zipeasy.CompressRequest{
//	    Source: "/path/to/folder",
//	    Target: "/path/to/backup", // written as backup.zip
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Compressed successfully in %s\n", res.Duration)
package zipeasy

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy/internal/codec"
	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/stats"
	"github.com/zipeasy/zipeasy/internal/store"
	"github.com/zipeasy/zipeasy/internal/store/diskstore"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrSourceUnreadable indicates the source folder, a file in it, or the
	// archive to extract could not be read.
	ErrSourceUnreadable = errors.New("zipeasy: source unreadable")

	// ErrTargetUnwritable indicates the output archive or extraction root
	// could not be created.
	ErrTargetUnwritable = errors.New("zipeasy: target unwritable")

	// ErrArchiveCorrupt indicates the archive or one of its entries could
	// not be decoded, or an entry name is unsafe.
	ErrArchiveCorrupt = errors.New("zipeasy: archive corrupt")

	// ErrEntryWriteFailed indicates a single entry could not be written.
	ErrEntryWriteFailed = errors.New("zipeasy: entry write failed")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("zipeasy: client closed")

	// ErrNoStore indicates a nil store was provided.
	ErrNoStore = errors.New("zipeasy: no store provided")

	// ErrUnknownMethod indicates an unsupported compression method name.
	ErrUnknownMethod = errors.New("zipeasy: unknown compression method")
)

// Client compresses and extracts archives.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	store     store.Store
	codec     codec.Codec
	registry  *codec.Registry
	recursive bool
	suffix    string
	workers   int
	stats     stats.Collector
	logger    *zap.Logger
	progress  progress.Func
	closed    atomic.Bool
}

// New creates a new Client with the given options.
// If no options are provided, archives are read from and written to the
// local filesystem using the Store method.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if !cfg.storeSet {
		disk, err := diskstore.New("")
		if err != nil {
			return nil, fmt.Errorf("creating disk store: %w", err)
		}
		cfg.store = disk
	}
	if cfg.store == nil {
		return nil, ErrNoStore
	}

	cdc := cfg.codec
	if cdc == nil {
		var err error
		cdc, err = cfg.registry.Lookup(cfg.method)
		if err != nil {
			return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownMethod, cfg.method, cfg.registry.Names())
		}
	} else {
		cfg.registry.Register(cdc)
	}

	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}

	c := &Client{
		store:     cfg.store,
		codec:     cdc,
		registry:  cfg.registry,
		recursive: cfg.recursive,
		suffix:    cfg.suffix,
		workers:   workers,
		stats:     cfg.stats,
		logger:    cfg.logger.Named("zipeasy"),
		progress:  cfg.progress,
	}

	c.logger.Debug("client initialized",
		zap.String("method", c.codec.Name()),
		zap.Bool("recursive", c.recursive),
		zap.String("suffix", c.suffix),
	)

	return c, nil
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	return nil
}

// Codec returns the codec new entries are written with.
func (c *Client) Codec() codec.Codec {
	return c.codec
}

// Store returns the storage backend used by this client.
func (c *Client) Store() store.Store {
	return c.store
}

// ArchiveName returns the location Compress writes for target.
func (c *Client) ArchiveName(target string) string {
	if c.suffix == "" {
		return target
	}
	return target + "." + c.suffix
}

// finish records metrics for a completed operation.
func (c *Client) finish(res *Result, start time.Time) {
	res.Duration = time.Since(start)

	switch res.Mode {
	case ModeCompress:
		c.stats.IncCounter(stats.MetricArchivesCreated, 1)
		c.stats.IncCounter(stats.MetricEntriesWritten, int64(res.Entries))
	case ModeExtract:
		c.stats.IncCounter(stats.MetricArchivesExtracted, 1)
		c.stats.IncCounter(stats.MetricEntriesExtracted, int64(res.Entries))
	}
	c.stats.IncCounter(stats.MetricBytesProcessed, res.Bytes)
	c.stats.ObserveHistogram(stats.MetricDurationSeconds, res.Duration.Seconds())

	c.progress(progress.Progress{
		Op:           res.Mode.String(),
		Phase:        progress.PhaseDone,
		EntriesDone:  res.Entries,
		EntriesTotal: res.Entries,
		BytesDone:    res.Bytes,
		BytesTotal:   res.Bytes,
		StartTime:    start,
	})

	c.logger.Info(res.Mode.String()+" finished",
		zap.String("archive", res.Archive),
		zap.Int("entries", res.Entries),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("duration", res.Duration),
	)
}

// fail records metrics for a failed operation and passes err through.
func (c *Client) fail(mode Mode, start time.Time, err error) error {
	c.stats.IncCounter(stats.MetricFailures, 1)
	c.progress(progress.Progress{
		Op:        mode.String(),
		Phase:     progress.PhaseError,
		StartTime: start,
		Err:       err,
	})
	c.logger.Debug(mode.String()+" failed", zap.Error(err))
	return err
}
