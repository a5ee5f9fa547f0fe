package x11

import (
	"errors"
	"testing"

	"github.com/jezek/xgb/shm"
)

// fakeAllocator satisfies allocator with plain heap slices, so pool logic
// runs without a server or kernel segments.
type fakeAllocator struct {
	nextSeg  shm.Seg
	live     map[shm.Seg][]byte
	allocs   int
	releases int
	failNext bool
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{live: make(map[shm.Seg][]byte)}
}

func (f *fakeAllocator) allocate(size int) (segment, error) {
	if f.failNext {
		f.failNext = false
		return segment{}, &ResourceError{Size: size, Err: errors.New("injected failure")}
	}
	f.nextSeg++
	f.allocs++
	data := make([]byte, size)
	f.live[f.nextSeg] = data
	return segment{seg: f.nextSeg, shmid: int(f.nextSeg), data: data}, nil
}

func (f *fakeAllocator) release(s segment) error {
	if _, ok := f.live[s.seg]; !ok {
		return errors.New("release of unknown segment")
	}
	delete(f.live, s.seg)
	f.releases++
	return nil
}

func newTestPool(t *testing.T, alloc *fakeAllocator) *Pool {
	t.Helper()
	p := newPool(alloc, 2)
	if err := p.Resize(8, 4); err != nil {
		t.Fatalf("initial Resize: %v", err)
	}
	return p
}

func TestPoolLifecycle(t *testing.T) {
	alloc := newFakeAllocator()
	p := newTestPool(t, alloc)

	if !p.Idle() {
		t.Fatal("fresh pool not idle")
	}

	b, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if b.State() != BufferWriting {
		t.Fatalf("state after Acquire = %v, want writing", b.State())
	}
	if b.Pix == nil || b.Pix.Width() != 8 || b.Pix.Height() != 4 {
		t.Fatal("acquired buffer has no usable pixel view")
	}

	if err := p.Ready(b); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := p.Displayed(b); err != nil {
		t.Fatalf("Displayed: %v", err)
	}
	if !p.InFlight() {
		t.Fatal("pool not in flight after Displayed")
	}

	if err := p.Release(b.Seg()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if b.State() != BufferFree {
		t.Errorf("state after Release = %v, want free", b.State())
	}
	if !p.Idle() {
		t.Error("pool not idle after full cycle")
	}
}

func TestPoolSingleWriter(t *testing.T) {
	p := newTestPool(t, newFakeAllocator())

	b, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// A second acquire while one buffer is being written must fail even
	// though a free buffer exists.
	if _, err := p.Acquire(); err == nil {
		t.Fatal("second Acquire during writing succeeded")
	}

	p.Ready(b)
	p.Displayed(b)

	// With the first frame displayed the other buffer is available.
	b2, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire after Displayed: %v", err)
	}
	p.Ready(b2)
	p.Displayed(b2)

	// Both displayed: acquiring must report backpressure.
	if _, err := p.Acquire(); !errors.Is(err, ErrNoFreeBuffer) {
		t.Fatalf("Acquire with all buffers displayed = %v, want ErrNoFreeBuffer", err)
	}
}

func TestPoolDisplayedNotAcquirable(t *testing.T) {
	p := newTestPool(t, newFakeAllocator())

	first, _ := p.Acquire()
	p.Ready(first)
	p.Displayed(first)

	// Drain the pool and verify the displayed buffer is never handed out.
	second, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if second == first {
		t.Fatal("Acquire returned a displayed buffer")
	}
}

func TestPoolInvalidTransitions(t *testing.T) {
	p := newTestPool(t, newFakeAllocator())

	b, _ := p.Acquire()
	if err := p.Displayed(b); err == nil {
		t.Error("Displayed on writing buffer succeeded")
	}
	if err := p.Release(b.Seg()); err == nil {
		t.Error("Release on writing buffer succeeded")
	}
	if err := p.Ready(b); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := p.Ready(b); err == nil {
		t.Error("double Ready succeeded")
	}
	if err := p.Release(shm.Seg(9999)); err == nil {
		t.Error("Release of unknown segment succeeded")
	}
}

func TestPoolResizeRefusesInFlight(t *testing.T) {
	p := newTestPool(t, newFakeAllocator())

	b, _ := p.Acquire()
	p.Ready(b)
	p.Displayed(b)

	if err := p.Resize(16, 16); err == nil {
		t.Fatal("Resize with a displayed frame succeeded")
	}

	p.Release(b.Seg())
	if err := p.Resize(16, 16); err != nil {
		t.Fatalf("Resize after drain: %v", err)
	}
	if w, h := p.Size(); w != 16 || h != 16 {
		t.Errorf("size after resize = %dx%d, want 16x16", w, h)
	}
}

func TestPoolResizeReallocates(t *testing.T) {
	alloc := newFakeAllocator()
	p := newTestPool(t, alloc)

	if alloc.allocs != 2 {
		t.Fatalf("initial allocations = %d, want 2", alloc.allocs)
	}
	if err := p.Resize(32, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if alloc.releases != 2 || alloc.allocs != 4 {
		t.Errorf("after resize: %d releases, %d allocs, want 2 and 4", alloc.releases, alloc.allocs)
	}
	if len(alloc.live) != 2 {
		t.Errorf("%d live segments after resize, want 2", len(alloc.live))
	}
}

func TestPoolAllocationFailure(t *testing.T) {
	alloc := newFakeAllocator()
	p := newPool(alloc, 2)

	alloc.failNext = true
	err := p.Resize(8, 8)
	if err == nil {
		t.Fatal("Resize with failing allocator succeeded")
	}
	var res *ResourceError
	if !errors.As(err, &res) {
		t.Errorf("Resize error = %T, want *ResourceError", err)
	}

	// Before a successful resize the pool must refuse to hand out buffers.
	if _, err := p.Acquire(); err == nil {
		t.Error("Acquire on unallocated pool succeeded")
	}
}

func TestPoolDestroy(t *testing.T) {
	alloc := newFakeAllocator()
	p := newTestPool(t, alloc)

	b, _ := p.Acquire()
	p.Ready(b)
	p.Displayed(b)

	p.Destroy()
	if len(alloc.live) != 0 {
		t.Errorf("%d live segments after Destroy, want 0", len(alloc.live))
	}
	if w, h := p.Size(); w != 0 || h != 0 {
		t.Errorf("size after Destroy = %dx%d, want 0x0", w, h)
	}
}

func TestBufferStateString(t *testing.T) {
	states := map[BufferState]string{
		BufferFree:      "free",
		BufferWriting:   "writing",
		BufferReady:     "ready",
		BufferDisplayed: "displayed",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
