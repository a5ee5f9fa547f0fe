package walkbg

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewCorrelationID(t *testing.T) {
	id1 := NewCorrelationID()
	id2 := NewCorrelationID()

	if id1 == "" {
		t.Fatal("NewCorrelationID returned empty ID")
	}
	if len(id1.String()) != 16 {
		t.Errorf("correlation ID length = %d, want 16", len(id1.String()))
	}
	if id1 == id2 {
		t.Error("two correlation IDs should differ")
	}
}

func TestWithCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "test-id-123")

	if got := CorrelationIDFromContext(ctx); got != "test-id-123" {
		t.Errorf("CorrelationIDFromContext = %q, want test-id-123", got)
	}
}

func TestWithCorrelationID_EmptyGenerates(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")

	if got := CorrelationIDFromContext(ctx); got == "" {
		t.Error("empty ID should have been replaced with a generated one")
	}
}

func TestCorrelationIDFromContext_Missing(t *testing.T) {
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("CorrelationIDFromContext on bare context = %q, want empty", got)
	}
	if got := CorrelationIDFromContext(nil); got != "" {
		t.Errorf("CorrelationIDFromContext(nil) = %q, want empty", got)
	}
}

func TestEnsureCorrelationID(t *testing.T) {
	t.Run("adds when missing", func(t *testing.T) {
		ctx := EnsureCorrelationID(context.Background())
		if CorrelationIDFromContext(ctx) == "" {
			t.Error("EnsureCorrelationID did not add an ID")
		}
	})

	t.Run("keeps existing", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "existing")
		ctx = EnsureCorrelationID(ctx)
		if got := CorrelationIDFromContext(ctx); got != "existing" {
			t.Errorf("EnsureCorrelationID replaced %q with %q", "existing", got)
		}
	})
}

func TestCorrelatedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	ctx := WithCorrelationID(context.Background(), "abc123")
	clog := NewCorrelatedLogger(ctx, base)

	clog.Info("reloading configuration", "source", "/tmp/config.toml")

	output := buf.String()
	if !strings.Contains(output, "correlation_id=abc123") {
		t.Errorf("log output missing correlation ID:\n%s", output)
	}
	if !strings.Contains(output, "source=/tmp/config.toml") {
		t.Errorf("log output missing original args:\n%s", output)
	}
}

func TestCorrelatedLogger_NoID(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	clog := NewCorrelatedLogger(context.Background(), base)
	clog.Info("plain message")

	if strings.Contains(buf.String(), "correlation_id") {
		t.Errorf("output should not carry a correlation ID:\n%s", buf.String())
	}
}

func TestCorrelatedLogger_NilLogger(t *testing.T) {
	clog := NewCorrelatedLogger(context.Background(), nil)
	// Falls back to a no-op logger; must not panic
	clog.Info("into the void")
}

func TestCorrelatedLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	first := NewCorrelatedLogger(WithCorrelationID(context.Background(), "first"), base)
	second := first.WithContext(WithCorrelationID(context.Background(), "second"))

	second.Info("rebound")

	if !strings.Contains(buf.String(), "correlation_id=second") {
		t.Errorf("WithContext did not rebind the ID:\n%s", buf.String())
	}
}
