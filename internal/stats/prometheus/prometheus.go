// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zipeasy/zipeasy/internal/stats"
)

// help holds descriptions for the metrics the library emits.
// Unknown names use the metric name as help text.
var help = map[string]string{
	stats.MetricArchivesCreated:   "Archives written by compress operations.",
	stats.MetricArchivesExtracted: "Archives unpacked by extract operations.",
	stats.MetricEntriesWritten:    "Entries added to archives.",
	stats.MetricEntriesExtracted:  "Entries recreated on disk.",
	stats.MetricBytesProcessed:    "Uncompressed entry bytes read or written.",
	stats.MetricFailures:          "Operations that returned an error.",
	stats.MetricDurationSeconds:   "Wall time of compress and extract operations.",
	stats.MetricCacheHits:         "Archive cache hits.",
	stats.MetricCacheMisses:       "Archive cache misses.",
	stats.MetricCacheSize:         "Archives currently cached.",
}

// durationBuckets spans sub-millisecond single-file archives up to multi-minute trees.
var durationBuckets = prometheus.ExponentialBuckets(0.001, 4, 10)

// Collector implements stats.Collector using Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector backed by registry.
// If registry is nil, a fresh registry is created.
func New(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Registry returns the registry metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by a node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	c.getOrCreateCounter(name).Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	c.getOrCreateGauge(name).Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.getOrCreateHistogram(name).Observe(value)
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

func (c *Collector) getOrCreateCounter(name string) prometheus.Counter {
	c.mu.RLock()
	counter, ok := c.counters[name]
	c.mu.RUnlock()
	if ok {
		return counter
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if counter, ok = c.counters[name]; ok {
		return counter
	}

	counter = prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: helpFor(name)})
	if existing, ok := register(c.registry, counter).(prometheus.Counter); ok {
		counter = existing
	}
	c.counters[name] = counter
	return counter
}

func (c *Collector) getOrCreateGauge(name string) prometheus.Gauge {
	c.mu.RLock()
	gauge, ok := c.gauges[name]
	c.mu.RUnlock()
	if ok {
		return gauge
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gauge, ok = c.gauges[name]; ok {
		return gauge
	}

	gauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: helpFor(name)})
	if existing, ok := register(c.registry, gauge).(prometheus.Gauge); ok {
		gauge = existing
	}
	c.gauges[name] = gauge
	return gauge
}

func (c *Collector) getOrCreateHistogram(name string) prometheus.Histogram {
	c.mu.RLock()
	histogram, ok := c.histograms[name]
	c.mu.RUnlock()
	if ok {
		return histogram
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, ok = c.histograms[name]; ok {
		return histogram
	}

	histogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    helpFor(name),
		Buckets: durationBuckets,
	})
	if existing, ok := register(c.registry, histogram).(prometheus.Histogram); ok {
		histogram = existing
	}
	c.histograms[name] = histogram
	return histogram
}

// register registers m and returns the collector to use: the already
// registered one on conflict, otherwise m. A failed registration still
// returns m so callers keep a working (if unexported) metric.
func register(reg prometheus.Registerer, m prometheus.Collector) prometheus.Collector {
	if err := reg.Register(m); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return m
}
