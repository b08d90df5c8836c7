// Package promadapter implements tinylfu.MetricsCollector with
// Prometheus counters and histograms, for services that already expose a
// /metrics endpoint via client_golang and don't want a full OpenTelemetry
// pipeline just for cache metrics.
//
// SPDX-License-Identifier: MPL-2.0
package promadapter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ashgrove-cache/tinylfu"
)

// defaultLatencyBuckets spans roughly 100ns to 1ms, the range a local
// in-process cache's Get/Put/Remove calls fall into.
var defaultLatencyBuckets = []float64{
	100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 500000, 1000000,
}

// Collector implements tinylfu.MetricsCollector with Prometheus
// instruments. The zero value is not usable; construct one with New and
// register it with a prometheus.Registerer.
type Collector struct {
	getLatency    prometheus.Histogram
	putLatency    prometheus.Histogram
	removeLatency prometheus.Histogram
	hits          prometheus.Counter
	misses        prometheus.Counter
	evictions     prometheus.Counter
	expirations   prometheus.Counter
}

// Options configures the metric namespace/subsystem and histogram buckets.
type Options struct {
	// Namespace and Subsystem prefix every metric name, following
	// Prometheus naming convention: <namespace>_<subsystem>_<name>.
	Namespace string
	Subsystem string

	// LatencyBuckets overrides the histogram bucket boundaries, in
	// nanoseconds. Defaults to defaultLatencyBuckets.
	LatencyBuckets []float64
}

// New constructs a Collector. Call MustRegister (or register the return
// value of Collectors()) with a prometheus.Registerer before use.
func New(opts Options) *Collector {
	buckets := opts.LatencyBuckets
	if buckets == nil {
		buckets = defaultLatencyBuckets
	}

	histOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		}
	}
	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      name,
			Help:      help,
		}
	}

	return &Collector{
		getLatency:    prometheus.NewHistogram(histOpts("get_latency_ns", "Latency of Get operations in nanoseconds")),
		putLatency:    prometheus.NewHistogram(histOpts("put_latency_ns", "Latency of Put operations in nanoseconds")),
		removeLatency: prometheus.NewHistogram(histOpts("remove_latency_ns", "Latency of Remove operations in nanoseconds")),
		hits:          prometheus.NewCounter(counterOpts("hits_total", "Total number of cache hits")),
		misses:        prometheus.NewCounter(counterOpts("misses_total", "Total number of cache misses")),
		evictions:     prometheus.NewCounter(counterOpts("evictions_total", "Total number of evictions")),
		expirations:   prometheus.NewCounter(counterOpts("expirations_total", "Total number of TTL-based expirations")),
	}
}

// Collectors returns every Prometheus collector backing c, for bulk
// registration: registry.MustRegister(c.Collectors()...).
func (c *Collector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.getLatency, c.putLatency, c.removeLatency,
		c.hits, c.misses, c.evictions, c.expirations,
	}
}

// MustRegister registers every instrument in c with r, panicking on a
// duplicate-registration conflict (the same behavior as
// prometheus.Registerer.MustRegister).
func (c *Collector) MustRegister(r prometheus.Registerer) {
	r.MustRegister(c.Collectors()...)
}

func (c *Collector) RecordGet(latencyNanos int64, hit bool) {
	c.getLatency.Observe(float64(latencyNanos))
	if hit {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
}

func (c *Collector) RecordPut(latencyNanos int64) {
	c.putLatency.Observe(float64(latencyNanos))
}

func (c *Collector) RecordRemove(latencyNanos int64) {
	c.removeLatency.Observe(float64(latencyNanos))
}

func (c *Collector) RecordEviction() {
	c.evictions.Inc()
}

func (c *Collector) RecordExpiration() {
	c.expirations.Inc()
}

var _ tinylfu.MetricsCollector = (*Collector)(nil)
