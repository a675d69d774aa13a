package main

import (
	"context"
	"fmt"

	"github.com/zipeasy/zipeasy"
	"github.com/zipeasy/zipeasy/internal/store"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/cachestrategy/lru"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/memory"
	"github.com/zipeasy/zipeasy/internal/store/diskstore"
	"github.com/zipeasy/zipeasy/internal/store/gcsstore"
	"github.com/zipeasy/zipeasy/internal/store/httpstore"
	"github.com/zipeasy/zipeasy/internal/store/s3store"
)

// openStore returns the backend serving loc.
func openStore(ctx context.Context, loc store.Location) (store.Store, error) {
	switch loc.Scheme {
	case store.SchemeFile:
		return diskstore.New("")

	case store.SchemeS3:
		opts := []s3store.Option{s3store.WithPrefix(cfg.S3.Prefix)}
		if cfg.S3.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(cfg.S3.Endpoint))
		}
		if cfg.S3.TempDir != "" {
			opts = append(opts, s3store.WithTempDir(cfg.S3.TempDir))
		}
		s, err := s3store.New(ctx, loc.Bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating S3 store: %w", err)
		}
		return withCache(s)

	case store.SchemeGCS:
		s, err := gcsstore.New(ctx, loc.Bucket, gcsstore.WithPrefix(cfg.GCS.Prefix))
		if err != nil {
			return nil, fmt.Errorf("creating GCS store: %w", err)
		}
		return withCache(s)

	case store.SchemeHTTP:
		opts := []httpstore.Option{
			httpstore.WithRetries(cfg.HTTP.Retries),
			httpstore.WithTempDir(cfg.HTTP.TempDir),
			httpstore.WithProgress(progressFunc()),
		}
		if cfg.HTTP.Timeout > 0 {
			opts = append(opts, httpstore.WithTimeout(cfg.HTTP.Timeout))
		}
		return withCache(httpstore.New(opts...))

	default:
		return nil, fmt.Errorf("unsupported location scheme %q", loc.Scheme)
	}
}

// withCache keeps opened remote archives in memory so that repeated reads
// within one run download once.
func withCache(s store.Store) (store.Store, error) {
	if cfg.CacheSize == 0 {
		return s, nil
	}
	strategy, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU strategy: %w", err)
	}
	return cachedstore.New(s, memory.New(strategy, collector)), nil
}

// newClient builds a client whose store serves loc.
func newClient(ctx context.Context, loc store.Location, opts ...zipeasy.Option) (*zipeasy.Client, error) {
	st, err := openStore(ctx, loc)
	if err != nil {
		return nil, err
	}

	base := []zipeasy.Option{
		zipeasy.WithStore(st),
		zipeasy.WithLogger(log),
		zipeasy.WithStats(collector),
		zipeasy.WithProgress(progressFunc()),
	}
	client, err := zipeasy.New(append(base, opts...)...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}
