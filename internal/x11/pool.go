// Package x11 provides the shared-memory frame buffer pool.
package x11

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb/shm"

	"github.com/opd-ai/go-walkbg/internal/render"
)

// ErrNoFreeBuffer is returned by Acquire when every buffer is still being
// written or displayed. The frame loop treats it as backpressure and skips
// the frame instead of blocking.
var ErrNoFreeBuffer = errors.New("no free buffer in pool")

// BufferState tracks where a buffer is in its lifecycle.
type BufferState int

const (
	// BufferFree means the buffer may be acquired for drawing.
	BufferFree BufferState = iota
	// BufferWriting means the renderer owns the buffer.
	BufferWriting
	// BufferReady means drawing finished but the frame is not submitted.
	BufferReady
	// BufferDisplayed means the server may still read the buffer; it must
	// not be touched until the server signals completion.
	BufferDisplayed
)

// String returns the state name for logs and test failures.
func (s BufferState) String() string {
	switch s {
	case BufferFree:
		return "free"
	case BufferWriting:
		return "writing"
	case BufferReady:
		return "ready"
	case BufferDisplayed:
		return "displayed"
	default:
		return fmt.Sprintf("BufferState(%d)", int(s))
	}
}

// Buffer is one shared-memory frame. Pix exposes the pixels to the
// renderer; the rest of the bookkeeping stays inside this package.
type Buffer struct {
	// Pix is the drawable view over the shared segment.
	Pix *render.PixelBuffer

	seg   segment
	state BufferState
}

// State returns the buffer's lifecycle state.
func (b *Buffer) State() BufferState {
	return b.state
}

// Seg returns the server-side identifier of the backing segment.
func (b *Buffer) Seg() shm.Seg {
	return b.seg.seg
}

// segment is one shared-memory allocation: the server-side Seg id, the
// kernel shm id and our mapping of it.
type segment struct {
	seg   shm.Seg
	shmid int
	data  []byte
}

// allocator abstracts shared-memory segment setup so pool logic stays
// testable without a server. The real implementation is sysvAllocator.
type allocator interface {
	allocate(size int) (segment, error)
	release(seg segment) error
}

// Pool manages a fixed set of shared-memory frame buffers for one surface.
// Two buffers are enough for the draw-while-displayed cadence: while the
// server reads one frame the renderer fills the other.
//
// State transitions are strict. Acquire hands out at most one writing
// buffer at a time, displayed buffers can only be freed by Release with
// the server's completion in hand, and Resize refuses to reallocate while
// any frame is in flight.
type Pool struct {
	alloc         allocator
	bufs          []*Buffer
	width, height int
	stride        int
}

// newPool creates an empty pool of count unallocated buffers. Resize must
// run before the first Acquire.
func newPool(alloc allocator, count int) *Pool {
	if count < 1 {
		count = 1
	}
	bufs := make([]*Buffer, count)
	for i := range bufs {
		bufs[i] = &Buffer{}
	}
	return &Pool{alloc: alloc, bufs: bufs}
}

// Size returns the pixel dimensions the pool is allocated for.
func (p *Pool) Size() (width, height int) {
	return p.width, p.height
}

// Idle reports whether every buffer is free, meaning no frame is being
// drawn, queued or displayed.
func (p *Pool) Idle() bool {
	for _, b := range p.bufs {
		if b.state != BufferFree {
			return false
		}
	}
	return true
}

// InFlight reports whether any frame awaits the server's completion.
func (p *Pool) InFlight() bool {
	for _, b := range p.bufs {
		if b.state == BufferDisplayed {
			return true
		}
	}
	return false
}

// Resize releases all segments and allocates fresh ones for the new
// dimensions. Every buffer must be free; callers drain in-flight frames
// first.
func (p *Pool) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("invalid pool dimensions %dx%d", width, height)
	}
	if !p.Idle() {
		return errors.New("pool resize with frames in flight")
	}

	for _, b := range p.bufs {
		if b.seg.data != nil {
			if err := p.alloc.release(b.seg); err != nil {
				return err
			}
			b.seg = segment{}
			b.Pix = nil
		}
	}

	stride := width * 4
	size := stride * height
	for _, b := range p.bufs {
		seg, err := p.alloc.allocate(size)
		if err != nil {
			return err
		}
		pix, err := render.WrapPixelBuffer(width, height, stride, seg.data)
		if err != nil {
			p.alloc.release(seg)
			return &ResourceError{Size: size, Err: err}
		}
		b.seg = seg
		b.Pix = pix
		b.state = BufferFree
	}
	p.width, p.height = width, height
	p.stride = stride
	return nil
}

// Acquire returns a free buffer moved to the writing state. It fails with
// ErrNoFreeBuffer when none is free, and refuses to hand out a second
// buffer while one is already being written.
func (p *Pool) Acquire() (*Buffer, error) {
	if p.width == 0 {
		return nil, errors.New("pool not allocated")
	}
	for _, b := range p.bufs {
		if b.state == BufferWriting {
			return nil, errors.New("a buffer is already acquired for writing")
		}
	}
	for _, b := range p.bufs {
		if b.state == BufferFree {
			b.state = BufferWriting
			return b, nil
		}
	}
	return nil, ErrNoFreeBuffer
}

// Ready marks a writing buffer's frame as complete.
func (p *Pool) Ready(b *Buffer) error {
	if b.state != BufferWriting {
		return fmt.Errorf("ready on %s buffer", b.state)
	}
	b.state = BufferReady
	return nil
}

// Displayed marks a ready buffer as submitted to the server.
func (p *Pool) Displayed(b *Buffer) error {
	if b.state != BufferReady {
		return fmt.Errorf("displayed on %s buffer", b.state)
	}
	b.state = BufferDisplayed
	return nil
}

// Release frees the displayed buffer backed by seg. Only the server's
// completion event names a segment, so nothing else can free a displayed
// buffer.
func (p *Pool) Release(seg shm.Seg) error {
	for _, b := range p.bufs {
		if b.seg.seg != seg {
			continue
		}
		if b.state != BufferDisplayed {
			return fmt.Errorf("release of %s buffer", b.state)
		}
		b.state = BufferFree
		return nil
	}
	return fmt.Errorf("release of unknown segment %d", seg)
}

// Destroy releases every segment. In-flight frames are abandoned; this is
// teardown, not a drain.
func (p *Pool) Destroy() {
	for _, b := range p.bufs {
		if b.seg.data != nil {
			p.alloc.release(b.seg)
			b.seg = segment{}
			b.Pix = nil
		}
		b.state = BufferFree
	}
	p.width, p.height = 0, 0
	p.stride = 0
}
