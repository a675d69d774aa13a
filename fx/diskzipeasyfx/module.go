// Package diskzipeasyfx provides an fx module for a disk-backed zipeasy client.
package diskzipeasyfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy"
	"github.com/zipeasy/zipeasy/internal/stats"
	"github.com/zipeasy/zipeasy/internal/stats/logger"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/cachestrategy/lru"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/memory"
	"github.com/zipeasy/zipeasy/internal/store/diskstore"
)

// Config holds configuration for the disk-backed zipeasy client.
type Config struct {
	// Root is the directory relative archive paths resolve against.
	// Empty means the working directory.
	Root string

	// CacheSize is the number of opened archives kept in memory.
	// Default is 8.
	CacheSize int

	// Method is the compression method for new archives.
	// Default is "store".
	Method string

	// Recursive packs subfolders too.
	Recursive bool
}

// Module provides a disk-backed zipeasy client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("diskzipeasy",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("zipeasy.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *zipeasy.Client
}

func newClient(p Params) (Result, error) {
	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 8
	}
	method := p.Config.Method
	if method == "" {
		method = "store"
	}

	baseStore, err := diskstore.New(p.Config.Root)
	if err != nil {
		return Result{}, err
	}

	lruStrategy, err := lru.New(cacheSize)
	if err != nil {
		return Result{}, err
	}

	st := cachedstore.New(baseStore, memory.New(lruStrategy, p.Collector))

	client, err := zipeasy.New(
		zipeasy.WithStore(st),
		zipeasy.WithMethod(method),
		zipeasy.WithRecursive(p.Config.Recursive),
		zipeasy.WithStats(p.Collector),
		zipeasy.WithLogger(p.Logger),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
