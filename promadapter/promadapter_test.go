package promadapter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/ashgrove-cache/tinylfu"
)

func TestCollectorImplementsInterface(t *testing.T) {
	var _ tinylfu.MetricsCollector = (*Collector)(nil)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordGet(t *testing.T) {
	c := New(Options{Namespace: "test", Subsystem: "cache"})

	c.RecordGet(1000, true)
	c.RecordGet(2000, false)
	c.RecordGet(1500, true)

	if got := counterValue(t, c.hits); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := counterValue(t, c.misses); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := histogramCount(t, c.getLatency); got != 3 {
		t.Errorf("getLatency samples = %v, want 3", got)
	}
}

func TestRecordPutAndRemove(t *testing.T) {
	c := New(Options{Namespace: "test", Subsystem: "cache"})

	c.RecordPut(100)
	c.RecordPut(200)
	c.RecordRemove(50)

	if got := histogramCount(t, c.putLatency); got != 2 {
		t.Errorf("putLatency samples = %v, want 2", got)
	}
	if got := histogramCount(t, c.removeLatency); got != 1 {
		t.Errorf("removeLatency samples = %v, want 1", got)
	}
}

func TestRecordEvictionAndExpiration(t *testing.T) {
	c := New(Options{Namespace: "test", Subsystem: "cache"})

	c.RecordEviction()
	c.RecordEviction()
	c.RecordExpiration()

	if got := counterValue(t, c.evictions); got != 2 {
		t.Errorf("evictions = %v, want 2", got)
	}
	if got := counterValue(t, c.expirations); got != 1 {
		t.Errorf("expirations = %v, want 1", got)
	}
}

func TestMustRegister(t *testing.T) {
	c := New(Options{Namespace: "test", Subsystem: "cache2"})
	reg := prometheus.NewRegistry()
	c.MustRegister(reg)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(mfs) != 7 {
		t.Errorf("expected 7 registered metric families, got %d", len(mfs))
	}
}
