// Package otel provides OpenTelemetry integration for tinylfu cache metrics.
//
// This package implements the tinylfu.MetricsCollector interface using
// OpenTelemetry, giving latency histograms with automatic percentile
// calculation (p50, p95, p99) and multi-backend export (Prometheus, Jaeger,
// DataDog, Grafana).
//
// # Usage
//
//	import (
//	    "github.com/ashgrove-cache/tinylfu"
//	    tinylfuotel "github.com/ashgrove-cache/tinylfu/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//
//	collector, _ := tinylfuotel.NewOTelMetricsCollector(provider)
//
//	cache, _ := tinylfu.New[string, string](tinylfu.Config[string, string]{
//	    MaxSize:          10000,
//	    MetricsCollector: collector,
//	})
//
// # Metrics Exposed
//
//   - tinylfu_get_latency_ns: Histogram of Get() operation latencies
//   - tinylfu_put_latency_ns: Histogram of Put() operation latencies
//   - tinylfu_remove_latency_ns: Histogram of Remove() operation latencies
//   - tinylfu_get_hits_total: Counter of cache hits
//   - tinylfu_get_misses_total: Counter of cache misses
//   - tinylfu_evictions_total: Counter of evictions
//   - tinylfu_expirations_total: Counter of TTL-based expirations
//
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/ashgrove-cache/tinylfu"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements tinylfu.MetricsCollector using
// OpenTelemetry. Safe for concurrent use; the underlying OTEL instruments
// are themselves safe for concurrent use.
type OTelMetricsCollector struct {
	getLatency    metric.Int64Histogram
	putLatency    metric.Int64Histogram
	removeLatency metric.Int64Histogram
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	expirations   metric.Int64Counter
}

// Options for configuring OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/ashgrove-cache/tinylfu"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple cache instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates the OTEL instruments backing a
// MetricsCollector. provider must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{
		MeterName: "github.com/ashgrove-cache/tinylfu",
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	collector := &OTelMetricsCollector{}

	var err error
	collector.getLatency, err = meter.Int64Histogram(
		"tinylfu_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.putLatency, err = meter.Int64Histogram(
		"tinylfu_put_latency_ns",
		metric.WithDescription("Latency of Put operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.removeLatency, err = meter.Int64Histogram(
		"tinylfu_remove_latency_ns",
		metric.WithDescription("Latency of Remove operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.hits, err = meter.Int64Counter(
		"tinylfu_get_hits_total",
		metric.WithDescription("Total number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	collector.misses, err = meter.Int64Counter(
		"tinylfu_get_misses_total",
		metric.WithDescription("Total number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	collector.evictions, err = meter.Int64Counter(
		"tinylfu_evictions_total",
		metric.WithDescription("Total number of evictions"),
	)
	if err != nil {
		return nil, err
	}

	collector.expirations, err = meter.Int64Counter(
		"tinylfu_expirations_total",
		metric.WithDescription("Total number of TTL-based expirations"),
	)
	if err != nil {
		return nil, err
	}

	return collector, nil
}

// RecordGet records a completed Get/GetIfPresent call.
func (c *OTelMetricsCollector) RecordGet(latencyNanos int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNanos)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordPut records a completed Put call.
func (c *OTelMetricsCollector) RecordPut(latencyNanos int64) {
	c.putLatency.Record(context.Background(), latencyNanos)
}

// RecordRemove records a completed Remove call.
func (c *OTelMetricsCollector) RecordRemove(latencyNanos int64) {
	c.removeLatency.Record(context.Background(), latencyNanos)
}

// RecordEviction increments the evictions counter.
func (c *OTelMetricsCollector) RecordEviction() {
	c.evictions.Add(context.Background(), 1)
}

// RecordExpiration increments the TTL-expiration counter.
func (c *OTelMetricsCollector) RecordExpiration() {
	c.expirations.Add(context.Background(), 1)
}

var _ tinylfu.MetricsCollector = (*OTelMetricsCollector)(nil)
