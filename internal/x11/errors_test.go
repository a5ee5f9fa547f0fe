package x11

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUnsupportedError(t *testing.T) {
	err := &UnsupportedError{Capability: "MIT-SHM extension"}
	if !strings.Contains(err.Error(), "MIT-SHM extension") {
		t.Errorf("message %q does not name the capability", err.Error())
	}

	var unsup *UnsupportedError
	wrapped := fmt.Errorf("startup: %w", err)
	if !errors.As(wrapped, &unsup) {
		t.Error("errors.As failed to find UnsupportedError through wrapping")
	}
}

func TestProtocolErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &ProtocolError{Op: "put image", Err: inner}

	if !strings.Contains(err.Error(), "put image") {
		t.Errorf("message %q does not name the operation", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is failed to reach the wrapped error")
	}
}

func TestResourceErrorUnwrap(t *testing.T) {
	inner := errors.New("cannot allocate memory")
	err := &ResourceError{Size: 8294400, Err: inner}

	if !strings.Contains(err.Error(), "8294400") {
		t.Errorf("message %q does not state the size", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is failed to reach the wrapped error")
	}

	var res *ResourceError
	if !errors.As(fmt.Errorf("pool: %w", err), &res) {
		t.Error("errors.As failed to find ResourceError through wrapping")
	}
	if res.Size != 8294400 {
		t.Errorf("recovered Size = %d, want 8294400", res.Size)
	}
}
