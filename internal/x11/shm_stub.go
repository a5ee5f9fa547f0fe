//go:build !linux

// Package x11 provides a stub allocator for platforms without SysV shared
// memory support.
package x11

import (
	"errors"

	"github.com/jezek/xgb"
)

// sysvAllocator is only implemented on Linux. Elsewhere every allocation
// fails, which surfaces at startup as a resource error.
type sysvAllocator struct {
	conn *xgb.Conn
}

func (a *sysvAllocator) allocate(size int) (segment, error) {
	return segment{}, &ResourceError{Size: size, Err: errors.New("SysV shared memory is not supported on this platform")}
}

func (a *sysvAllocator) release(segment) error {
	return nil
}
