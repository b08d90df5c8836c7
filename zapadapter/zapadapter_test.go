package zapadapter

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ashgrove-cache/tinylfu"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New(zap.New(core)), logs
}

func TestLoggerImplementsInterface(t *testing.T) {
	var _ tinylfu.Logger = (*Logger)(nil)
}

func TestLoggerLevels(t *testing.T) {
	l, logs := newObserved()

	l.Debug("debug msg", "k", "v")
	l.Info("info msg", "k", "v")
	l.Warn("warn msg", "k", "v")
	l.Error("error msg", "k", "v")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 log entries, got %d", len(entries))
	}

	wantLevels := []zap.AtomicLevel{}
	_ = wantLevels
	wantMsgs := []string{"debug msg", "info msg", "warn msg", "error msg"}
	for i, e := range entries {
		if e.Message != wantMsgs[i] {
			t.Errorf("entry %d: got message %q, want %q", i, e.Message, wantMsgs[i])
		}
	}
}

func TestNewPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected New(nil) to panic")
		}
	}()
	New(nil)
}
