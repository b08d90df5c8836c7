// Package otel provides OpenTelemetry integration for tinylfu cache
// metrics, implementing the tinylfu.MetricsCollector interface.
//
// # Overview
//
// This package is a separate module from the tinylfu core, so applications
// that don't need metrics collection don't pay for the OpenTelemetry SDK
// dependency.
//
// # Quick Start
//
//	import (
//	    "github.com/ashgrove-cache/tinylfu"
//	    tinylfuotel "github.com/ashgrove-cache/tinylfu/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := tinylfuotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache, _ := tinylfu.New[string, User](tinylfu.Config[string, User]{
//	    MaxSize:          10_000,
//	    MetricsCollector: collector,
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":2112", nil))
//
// # Metrics Exposed
//
// Histograms (with automatic percentiles):
//   - tinylfu_get_latency_ns
//   - tinylfu_put_latency_ns
//   - tinylfu_remove_latency_ns
//
// Counters:
//   - tinylfu_get_hits_total
//   - tinylfu_get_misses_total
//   - tinylfu_evictions_total
//   - tinylfu_expirations_total
//
// # Prometheus Queries
//
// Hit ratio:
//
//	rate(tinylfu_get_hits_total[5m]) /
//	(rate(tinylfu_get_hits_total[5m]) + rate(tinylfu_get_misses_total[5m]))
//
// P99 get latency:
//
//	histogram_quantile(0.99, rate(tinylfu_get_latency_ns_bucket[5m]))
//
// # Thread Safety
//
// All methods are safe for concurrent use; the underlying OTEL instruments
// are themselves safe for concurrent use.
//
// collector_test.go in this package wires the collector to an in-memory
// metric reader and checks each instrument.
package otel
