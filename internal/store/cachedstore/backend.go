// Package cachedstore provides a caching wrapper for Store implementations.
// Remote archives are read once and served from memory afterwards, which
// lets list, verify and extract of the same archive share one download.
package cachedstore

// Backend defines the interface for cache storage backends.
// Implementations handle storage and eviction strategy.
type Backend interface {
	// Get retrieves a cached archive. Returns nil, false if not found.
	Get(key string) ([]byte, bool)

	// Set stores an archive in the cache.
	Set(key string, data []byte)

	// Remove drops an archive from the cache.
	Remove(key string)

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // Current number of entries
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
