// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Operation metrics.
	MetricArchivesCreated   = "zipeasy_archives_created_total"
	MetricArchivesExtracted = "zipeasy_archives_extracted_total"
	MetricEntriesWritten    = "zipeasy_entries_written_total"
	MetricEntriesExtracted  = "zipeasy_entries_extracted_total"
	MetricBytesProcessed    = "zipeasy_bytes_processed_total"
	MetricFailures          = "zipeasy_failures_total"
	MetricDurationSeconds   = "zipeasy_operation_duration_seconds"

	// Cache metrics.
	MetricCacheHits   = "zipeasy_cache_hits_total"
	MetricCacheMisses = "zipeasy_cache_misses_total"
	MetricCacheSize   = "zipeasy_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
