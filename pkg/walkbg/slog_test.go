package walkbg

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Debug("debug message", "key", "value")
	adapter.Info("info message", "count", 42)
	adapter.Warn("warn message")
	adapter.Error("error message", "err", "boom")

	output := buf.String()
	for _, want := range []string{
		"debug message", "info message", "warn message", "error message",
		"key=value", "count=42", "err=boom",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q:\n%s", want, output)
		}
	}
}

func TestNewSlogAdapter_NilLogger(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter(nil) returned nil")
	}
	// Must not panic
	adapter.Info("message with default logger")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := JSONLogger(&buf, slog.LevelInfo)

	logger.Info("structured message", "surfaces", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "structured message" {
		t.Errorf("msg = %v, want structured message", entry["msg"])
	}
	if entry["surfaces"] != float64(2) {
		t.Errorf("surfaces = %v, want 2", entry["surfaces"])
	}
}

func TestJSONLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := JSONLogger(&buf, slog.LevelWarn)

	logger.Info("filtered out")
	logger.Warn("kept")

	output := buf.String()
	if strings.Contains(output, "filtered out") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(output, "kept") {
		t.Error("warn message missing from output")
	}
}

func TestJSONLogger_NilWriter(t *testing.T) {
	// A nil writer falls back to stderr instead of panicking on first use.
	logger := JSONLogger(nil, slog.LevelError)
	if logger == nil {
		t.Fatal("JSONLogger(nil, ...) returned nil")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// All methods must be safe no-ops
	logger.Debug("a")
	logger.Info("b", "k", "v")
	logger.Warn("c")
	logger.Error("d")
}

func TestDefaultAndDebugLogger(t *testing.T) {
	if DefaultLogger() == nil {
		t.Error("DefaultLogger returned nil")
	}
	if DebugLogger() == nil {
		t.Error("DebugLogger returned nil")
	}
}
