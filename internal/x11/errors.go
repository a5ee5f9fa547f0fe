// Package x11 provides the error taxonomy for display-server failures.
package x11

import "fmt"

// UnsupportedError reports that the display server lacks a capability
// walkbg cannot run without, such as the MIT-SHM extension or an EWMH
// window manager. It is a permanent condition for the session; callers
// should exit rather than retry.
type UnsupportedError struct {
	// Capability names the missing feature in protocol terms.
	Capability string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported display server: missing %s", e.Capability)
}

// ProtocolError reports a failed request or a fatal condition on the
// X connection, such as the server closing the socket or rejecting a
// request mid-session.
type ProtocolError struct {
	// Op is the request or activity that failed, e.g. "create window".
	Op string
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("x11 protocol error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failed shared-memory allocation or attachment.
// Unlike a ProtocolError it concerns local resources, so a caller may
// plausibly retry after freeing memory.
type ResourceError struct {
	// Size is the requested allocation in bytes.
	Size int
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	return fmt.Sprintf("shared memory allocation of %d bytes failed: %v", e.Size, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ResourceError) Unwrap() error {
	return e.Err
}
