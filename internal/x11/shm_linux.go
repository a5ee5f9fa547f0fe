//go:build linux

// Package x11 provides the SysV shared-memory allocator backing the frame
// pools.
package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shm"
	"golang.org/x/sys/unix"
)

// sysvAllocator creates SysV shared-memory segments, maps them locally and
// attaches them on the server side, so both ends of the connection share
// each frame's pixels without copies.
type sysvAllocator struct {
	conn *xgb.Conn
}

// allocate sets up one segment of the given byte size. The segment is
// marked for removal as soon as both sides are attached, so the kernel
// reclaims it even if the process dies without cleanup.
func (a *sysvAllocator) allocate(size int) (segment, error) {
	shmid, err := unix.SysvShmGet(unix.IPC_PRIVATE, size, unix.IPC_CREAT|0o600)
	if err != nil {
		return segment{}, &ResourceError{Size: size, Err: err}
	}

	data, err := unix.SysvShmAttach(shmid, 0, 0)
	if err != nil {
		unix.SysvShmCtl(shmid, unix.IPC_RMID, nil)
		return segment{}, &ResourceError{Size: size, Err: err}
	}

	seg, err := shm.NewSegId(a.conn)
	if err != nil {
		unix.SysvShmDetach(data)
		unix.SysvShmCtl(shmid, unix.IPC_RMID, nil)
		return segment{}, &ProtocolError{Op: "allocate shm segment id", Err: err}
	}
	if err := shm.AttachChecked(a.conn, seg, uint32(shmid), false).Check(); err != nil {
		unix.SysvShmDetach(data)
		unix.SysvShmCtl(shmid, unix.IPC_RMID, nil)
		return segment{}, &ProtocolError{Op: "attach shm segment", Err: err}
	}
	unix.SysvShmCtl(shmid, unix.IPC_RMID, nil)

	return segment{seg: seg, shmid: shmid, data: data}, nil
}

// release detaches the segment on both sides. The kernel frees it once the
// last detach lands, thanks to the removal mark set at allocation.
func (a *sysvAllocator) release(s segment) error {
	shm.Detach(a.conn, s.seg)
	return unix.SysvShmDetach(s.data)
}
