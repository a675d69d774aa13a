// Package memoryzipeasyfx provides an fx module for a zipeasy client whose
// archives live in memory.
// Useful for testing.
package memoryzipeasyfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy"
	"github.com/zipeasy/zipeasy/internal/stats"
	"github.com/zipeasy/zipeasy/internal/stats/logger"
	"github.com/zipeasy/zipeasy/internal/store/memstore"
)

// Module provides an in-memory zipeasy client for testing.
// The backing *memstore.Store is provided too, for test setup.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memoryzipeasy",
	fx.Provide(
		newStatsCollector,
		memstore.New,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("zipeasy.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

func newClient(p Params) (*zipeasy.Client, error) {
	client, err := zipeasy.New(
		zipeasy.WithStore(p.Store),
		zipeasy.WithStats(p.Collector),
		zipeasy.WithLogger(p.Logger),
	)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
