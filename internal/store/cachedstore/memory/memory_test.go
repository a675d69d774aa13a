package memory

import (
	"testing"

	"github.com/zipeasy/zipeasy/internal/stats"
	"github.com/zipeasy/zipeasy/internal/stats/logger"
	"github.com/zipeasy/zipeasy/internal/store/cachedstore/cachestrategy/lru"
	"go.uber.org/zap"
)

func TestBackend_GetSet(t *testing.T) {
	strategy, err := lru.New(10)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	b := New(strategy, nil)

	// Initially empty.
	if _, ok := b.Get("a.zip"); ok {
		t.Error("Get() should return false for missing key")
	}

	// Set and get.
	b.Set("a.zip", []byte("hello"))
	data, ok := b.Get("a.zip")
	if !ok {
		t.Error("Get() should return true after Set")
	}
	if string(data) != "hello" {
		t.Errorf("Get() = %q, want %q", data, "hello")
	}

	b.Remove("a.zip")
	if _, ok := b.Get("a.zip"); ok {
		t.Error("Get() should return false after Remove")
	}
}

func TestBackend_Stats(t *testing.T) {
	strategy, err := lru.New(10)
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	b := New(strategy, nil)

	b.Set("a.zip", []byte("data"))

	// Hit.
	b.Get("a.zip")
	// Miss.
	b.Get("b.zip")

	stats := b.Stats()
	if stats.Hits != 1 {
		t.Errorf("Stats().Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Stats().Misses = %d, want 1", stats.Misses)
	}
	if stats.Size != 1 {
		t.Errorf("Stats().Size = %d, want 1", stats.Size)
	}
}

func TestBackend_Collector(t *testing.T) {
	strategy, _ := lru.New(10)
	c := logger.New(zap.NewNop())
	b := New(strategy, c)

	b.Set("a.zip", []byte("data"))
	b.Get("a.zip")
	b.Get("a.zip")
	b.Get("b.zip")

	if got := c.Total(stats.MetricCacheHits); got != 2 {
		t.Errorf("cache hits = %d, want 2", got)
	}
	if got := c.Total(stats.MetricCacheMisses); got != 1 {
		t.Errorf("cache misses = %d, want 1", got)
	}
}

func TestBackend_LRUEviction(t *testing.T) {
	strategy, err := lru.New(2) // Capacity of 2.
	if err != nil {
		t.Fatalf("lru.New() error = %v", err)
	}
	b := New(strategy, nil)

	b.Set("one", []byte("one"))
	b.Set("two", []byte("two"))
	b.Set("three", []byte("three")) // Should evict "one".

	if _, ok := b.Get("one"); ok {
		t.Error("Get(one) should return false after eviction")
	}
	if _, ok := b.Get("two"); !ok {
		t.Error("Get(two) should return true")
	}
	if _, ok := b.Get("three"); !ok {
		t.Error("Get(three) should return true")
	}
}

func TestLRU_InvalidCapacity(t *testing.T) {
	_, err := lru.New(0)
	if err == nil {
		t.Error("lru.New(0) should return error")
	}

	_, err = lru.New(-1)
	if err == nil {
		t.Error("lru.New(-1) should return error")
	}
}

// fakeStrategy is a simple strategy for testing injection.
type fakeStrategy struct {
	data map[string][]byte
}

func (s *fakeStrategy) Get(key string) ([]byte, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *fakeStrategy) Add(key string, value []byte) bool {
	s.data[key] = value
	return false
}

func (s *fakeStrategy) Remove(key string) bool {
	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

func (s *fakeStrategy) Len() int {
	return len(s.data)
}

func TestBackend_InjectableStrategy(t *testing.T) {
	strategy := &fakeStrategy{data: make(map[string][]byte)}
	b := New(strategy, nil)

	b.Set("k", []byte("test"))
	data, ok := b.Get("k")
	if !ok || string(data) != "test" {
		t.Error("injectable strategy should work")
	}
}
