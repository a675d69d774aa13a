package zipeasy

import (
	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy/internal/codec"
	"github.com/zipeasy/zipeasy/internal/codec/deflatecodec"
	"github.com/zipeasy/zipeasy/internal/codec/storecodec"
	"github.com/zipeasy/zipeasy/internal/codec/zstdcodec"
	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/stats"
	"github.com/zipeasy/zipeasy/internal/store"
)

// DefaultSuffix is appended to compress targets.
const DefaultSuffix = "zip"

// DefaultWorkers is the number of entries Verify checks at once.
const DefaultWorkers = 4

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store     store.Store
	storeSet  bool
	method    string
	codec     codec.Codec
	registry  *codec.Registry
	recursive bool
	suffix    string
	workers   int
	stats     stats.Collector
	logger    *zap.Logger
	progress  progress.Func
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		method:   "store",
		registry: codec.NewRegistry(storecodec.New(), deflatecodec.New(), zstdcodec.New()),
		suffix:   DefaultSuffix,
		workers:  DefaultWorkers,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
		progress: progress.Nop,
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the storage backend archives are read from and written to.
// If not set, the local filesystem is used. A nil store makes New fail
// with ErrNoStore.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
		o.storeSet = true
	})
}

// WithMethod selects a built-in compression method by name:
// "store" (default), "deflate" or "zstd".
func WithMethod(name string) Option {
	return optionFunc(func(o *options) {
		o.method = name
		o.codec = nil
	})
}

// WithCodec sets the codec new entries are written with. It is also
// registered for reading.
func WithCodec(c codec.Codec) Option {
	return optionFunc(func(o *options) {
		o.codec = c
	})
}

// WithRecursive makes Compress descend into subfolders.
// By default only the immediate children of the source are archived.
func WithRecursive(recursive bool) Option {
	return optionFunc(func(o *options) {
		o.recursive = recursive
	})
}

// WithSuffix sets the extension appended to compress targets.
// Default is "zip"; an empty suffix writes the target as given.
func WithSuffix(suffix string) Option {
	return optionFunc(func(o *options) {
		o.suffix = suffix
	})
}

// WithWorkers sets how many entries Verify checks concurrently.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithProgress sets a callback receiving progress updates.
// Calls for one operation never overlap.
func WithProgress(fn progress.Func) Option {
	return optionFunc(func(o *options) {
		if fn == nil {
			fn = progress.Nop
		}
		o.progress = fn
	})
}
