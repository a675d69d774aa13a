package micro

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/zipeasy/zipeasy"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/cachestrategy/lru"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/memory"
	"github.com/zipeasy/zipeasy/internal/store/memstore"
)

// makeSource fills a temp folder with n files of size bytes each. Half of
// every file is random, half repeats, so compressing methods have work to do.
func makeSource(b *testing.B, n, size int) string {
	b.Helper()
	dir := b.TempDir()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		data := make([]byte, size)
		rng.Read(data[:size/2])
		for j := size / 2; j < size; j++ {
			data[j] = byte(j % 7)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("file%03d.bin", i)), data, 0644); err != nil {
			b.Fatalf("writing source: %v", err)
		}
	}
	return dir
}

// BenchmarkCompress measures packing 32 files of 64 KiB per method.
func BenchmarkCompress(b *testing.B) {
	src := makeSource(b, 32, 64*1024)

	for _, method := range []string{"store", "deflate", "zstd"} {
		b.Run(method, func(b *testing.B) {
			client, err := zipeasy.New(
				zipeasy.WithStore(memstore.New()),
				zipeasy.WithMethod(method),
			)
			if err != nil {
				b.Fatalf("creating client: %v", err)
			}
			defer client.Close()

			ctx := context.Background()
			b.SetBytes(32 * 64 * 1024)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := client.Compress(ctx, zipeasy.CompressRequest{Source: src, Target: "bench"}); err != nil {
					b.Fatalf("compress error: %v", err)
				}
			}
		})
	}
}

// BenchmarkExtract measures unpacking per method.
func BenchmarkExtract(b *testing.B) {
	src := makeSource(b, 32, 64*1024)

	for _, method := range []string{"store", "deflate", "zstd"} {
		b.Run(method, func(b *testing.B) {
			client, err := zipeasy.New(
				zipeasy.WithStore(memstore.New()),
				zipeasy.WithMethod(method),
			)
			if err != nil {
				b.Fatalf("creating client: %v", err)
			}
			defer client.Close()

			ctx := context.Background()
			if _, err := client.Compress(ctx, zipeasy.CompressRequest{Source: src, Target: "bench"}); err != nil {
				b.Fatalf("compress error: %v", err)
			}

			dst := b.TempDir()
			b.SetBytes(32 * 64 * 1024)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := client.Extract(ctx, zipeasy.ExtractRequest{Archive: "bench.zip", Target: dst}); err != nil {
					b.Fatalf("extract error: %v", err)
				}
			}
		})
	}
}

// BenchmarkVerify_WarmCache measures repeated verification of an archive
// served from the LRU cache.
func BenchmarkVerify_WarmCache(b *testing.B) {
	src := makeSource(b, 32, 64*1024)

	lruStrategy, err := lru.New(4)
	if err != nil {
		b.Fatalf("creating LRU strategy: %v", err)
	}
	st := cachedstore.New(memstore.New(), memory.New(lruStrategy, nil))

	client, err := zipeasy.New(zipeasy.WithStore(st), zipeasy.WithMethod("zstd"))
	if err != nil {
		b.Fatalf("creating client: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Compress(ctx, zipeasy.CompressRequest{Source: src, Target: "bench"}); err != nil {
		b.Fatalf("compress error: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		report, err := client.Verify(ctx, "bench.zip")
		if err != nil {
			b.Fatalf("verify error: %v", err)
		}
		if !report.OK() {
			b.Fatalf("verify failures: %v", report.Failures)
		}
	}
	b.StopTimer()

	b.ReportMetric(st.Stats().HitRate(), "hit%")
}
