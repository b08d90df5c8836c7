// config_test.go: Config.Validate defaulting and rejection behavior
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

import (
	"testing"
	"time"
)

func TestValidateRejectsNonPositiveMaxSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		cfg := Config[string, int]{MaxSize: size}
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("MaxSize=%d: expected error, got nil", size)
		}
		if GetErrorCode(err) != ErrCodeInvalidMaxSize {
			t.Fatalf("MaxSize=%d: expected %s, got %s", size, ErrCodeInvalidMaxSize, GetErrorCode(err))
		}
	}
}

func TestValidateRejectsMaximumWeightWithoutWeigher(t *testing.T) {
	cfg := Config[string, int]{MaxSize: 10, MaximumWeight: 1000}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for MaximumWeight without Weigher")
	}
	if GetErrorCode(err) != ErrCodeMissingWeigher {
		t.Fatalf("expected %s, got %s", ErrCodeMissingWeigher, GetErrorCode(err))
	}
}

func TestValidateAcceptsMaximumWeightWithWeigher(t *testing.T) {
	cfg := Config[string, int]{
		MaxSize:       10,
		MaximumWeight: 1000,
		Weigher:       func(key string, value int) uint32 { return 1 },
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsConflictingExpiry(t *testing.T) {
	cfg := Config[string, int]{
		MaxSize:           10,
		ExpireAfterWrite:  time.Minute,
		ExpireAfterAccess: time.Second,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for ExpireAfterAccess shorter than ExpireAfterWrite")
	}
	if GetErrorCode(err) != ErrCodeConflictingExpiry {
		t.Fatalf("expected %s, got %s", ErrCodeConflictingExpiry, GetErrorCode(err))
	}
}

func TestValidateAllowsExpireAfterAccessLongerThanWrite(t *testing.T) {
	cfg := Config[string, int]{
		MaxSize:           10,
		ExpireAfterWrite:  time.Second,
		ExpireAfterAccess: time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAllowsEitherExpiryAlone(t *testing.T) {
	cfg := Config[string, int]{MaxSize: 10, ExpireAfterWrite: time.Second}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with only ExpireAfterWrite: %v", err)
	}

	cfg2 := Config[string, int]{MaxSize: 10, ExpireAfterAccess: time.Second}
	if err := cfg2.Validate(); err != nil {
		t.Fatalf("unexpected error with only ExpireAfterAccess: %v", err)
	}
}

func TestValidateDefaultsOptionalFields(t *testing.T) {
	cfg := Config[string, int]{MaxSize: 10}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WindowRatio != DefaultWindowRatio {
		t.Errorf("expected default WindowRatio %v, got %v", DefaultWindowRatio, cfg.WindowRatio)
	}
	if cfg.ConcurrencyLevel != DefaultConcurrencyLevel {
		t.Errorf("expected default ConcurrencyLevel %v, got %v", DefaultConcurrencyLevel, cfg.ConcurrencyLevel)
	}
	if cfg.MaintenanceInterval != DefaultMaintenanceInterval {
		t.Errorf("expected default MaintenanceInterval %v, got %v", DefaultMaintenanceInterval, cfg.MaintenanceInterval)
	}
	if cfg.Logger == nil {
		t.Error("expected Logger to be defaulted")
	}
	if cfg.TimeProvider == nil {
		t.Error("expected TimeProvider to be defaulted")
	}
	if cfg.MetricsCollector == nil {
		t.Error("expected MetricsCollector to be defaulted")
	}
}

func TestValidateDefaultsOutOfRangeWindowRatio(t *testing.T) {
	for _, ratio := range []float64{0, -0.5, 1, 1.5} {
		cfg := Config[string, int]{MaxSize: 10, WindowRatio: ratio}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("WindowRatio=%v: unexpected error: %v", ratio, err)
		}
		if cfg.WindowRatio != DefaultWindowRatio {
			t.Errorf("WindowRatio=%v: expected default %v, got %v", ratio, DefaultWindowRatio, cfg.WindowRatio)
		}
	}
}

func TestValidatePreservesExplicitFields(t *testing.T) {
	cfg := Config[string, int]{
		MaxSize:             5,
		WindowRatio:         0.2,
		ConcurrencyLevel:    4,
		MaintenanceInterval: 5 * time.Second,
		Logger:              NoOpLogger{},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WindowRatio != 0.2 {
		t.Errorf("expected WindowRatio to stay 0.2, got %v", cfg.WindowRatio)
	}
	if cfg.ConcurrencyLevel != 4 {
		t.Errorf("expected ConcurrencyLevel to stay 4, got %v", cfg.ConcurrencyLevel)
	}
	if cfg.MaintenanceInterval != 5*time.Second {
		t.Errorf("expected MaintenanceInterval to stay 5s, got %v", cfg.MaintenanceInterval)
	}
}

func TestDefaultConfigIsUsable(t *testing.T) {
	cfg := DefaultConfig[string, int]()
	if cfg.MaxSize != DefaultMaxSize {
		t.Errorf("expected MaxSize %d, got %d", DefaultMaxSize, cfg.MaxSize)
	}
	if cfg.Logger == nil || cfg.TimeProvider == nil || cfg.MetricsCollector == nil {
		t.Error("expected DefaultConfig to have defaulted dependencies")
	}
}

func TestSystemTimeProviderAdvances(t *testing.T) {
	tp := systemTimeProvider{}
	first := tp.Now()
	time.Sleep(2 * time.Millisecond)
	second := tp.Now()
	if second <= first {
		t.Errorf("expected time to advance, got first=%d second=%d", first, second)
	}
}
