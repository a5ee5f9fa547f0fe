// Package x11 provides background-layer surfaces: desktop-type windows
// with shared-memory frame pools.
package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shm"
	"github.com/jezek/xgb/xproto"
)

// surfaceName is the window title and class walkbg surfaces carry, so
// window inspectors and session tools can identify them.
const surfaceName = "walkbg"

// bufferCount is the number of frames per surface pool. One draws while
// the other is displayed.
const bufferCount = 2

// Surface is one background-layer window bound to one output, together
// with its frame pool. The window is typed as a desktop window and pinned
// below every other layer, sticky across workspaces, invisible to
// taskbars and pagers, and deaf to keyboard focus.
//
// A surface starts unconfigured. The first ConfigureNotify from the
// server fixes the real size and allocates the pool; until then Acquire
// fails and the frame loop must wait.
type Surface struct {
	conn *xgb.Conn
	win  xproto.Window
	gc   xproto.Gcontext

	depth byte
	pool  *Pool

	geom             Geometry
	targetW, targetH int
	configured       bool
	awaiting         bool
}

// CreateSurface creates and maps a background-layer window covering geom.
// The window manager answers with a ConfigureNotify carrying the size it
// actually granted; the surface stays unusable until that arrives.
func (c *Client) CreateSurface(geom Geometry) (*Surface, error) {
	win, err := xproto.NewWindowId(c.conn)
	if err != nil {
		return nil, &ProtocolError{Op: "allocate window id", Err: err}
	}

	err = xproto.CreateWindowChecked(c.conn, c.screen.RootDepth, win, c.screen.Root,
		int16(geom.X), int16(geom.Y), uint16(geom.Width), uint16(geom.Height), 0,
		xproto.WindowClassInputOutput, c.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{
			c.screen.BlackPixel,
			xproto.EventMaskExposure | xproto.EventMaskStructureNotify,
		}).Check()
	if err != nil {
		return nil, &ProtocolError{Op: "create window", Err: err}
	}

	s := &Surface{
		conn:  c.conn,
		win:   win,
		depth: c.screen.RootDepth,
		geom:  geom,
		pool:  newPool(&sysvAllocator{conn: c.conn}, bufferCount),
	}

	if err := c.applyLayerProperties(win); err != nil {
		s.Destroy()
		return nil, err
	}

	gc, err := xproto.NewGcontextId(c.conn)
	if err != nil {
		s.Destroy()
		return nil, &ProtocolError{Op: "allocate gcontext id", Err: err}
	}
	if err := xproto.CreateGCChecked(c.conn, gc, xproto.Drawable(win), 0, []uint32{}).Check(); err != nil {
		s.Destroy()
		return nil, &ProtocolError{Op: "create gcontext", Err: err}
	}
	s.gc = gc

	xproto.MapWindow(c.conn, win)

	c.surfaces[win] = s
	return s, nil
}

// applyLayerProperties stamps the window with everything that makes it a
// background layer before it is mapped, so the window manager sees the
// full intent on first sight.
func (c *Client) applyLayerProperties(win xproto.Window) error {
	// Desktop window type: the background layer in EWMH terms.
	desktop, err := c.atoms.atom(atomNetWMWindowTypeDesk)
	if err != nil {
		return err
	}
	typeProp, err := c.atoms.atom(atomNetWMWindowType)
	if err != nil {
		return err
	}
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, typeProp,
		xproto.AtomAtom, 32, 1, marshalAtoms([]xproto.Atom{desktop}))

	// Below everything, on all workspaces, invisible to taskbar and pager.
	states, err := c.atoms.atomList(atomNetWMStateBelow, atomNetWMStateSticky,
		atomNetWMStateSkipTask, atomNetWMStateSkipPager)
	if err != nil {
		return err
	}
	stateProp, err := c.atoms.atom(atomNetWMState)
	if err != nil {
		return err
	}
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, stateProp,
		xproto.AtomAtom, 32, uint32(len(states)), marshalAtoms(states))

	// 0xFFFFFFFF pins the window to every desktop.
	desktopProp, err := c.atoms.atom(atomNetWMDesktop)
	if err != nil {
		return err
	}
	allDesktops := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, desktopProp,
		xproto.AtomCardinal, 32, 1, allDesktops)

	// ICCCM WM_HINTS with InputHint set and Input false: the window never
	// takes keyboard focus. Nine 32-bit fields, the rest zero.
	hints := make([]byte, 9*4)
	xgb.Put32(hints, 1) // flags: InputHint
	xgb.Put32(hints[4:], 0)
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, xproto.AtomWmHints,
		xproto.AtomWmHints, 32, 9, hints)

	// Name and class, for window inspectors.
	utf8, err := c.atoms.atom(atomUTF8String)
	if err != nil {
		return err
	}
	nameProp, err := c.atoms.atom(atomNetWMName)
	if err != nil {
		return err
	}
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, nameProp,
		utf8, 8, uint32(len(surfaceName)), []byte(surfaceName))
	class := surfaceName + "\x00" + surfaceName + "\x00"
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, xproto.AtomWmClass,
		xproto.AtomString, 8, uint32(len(class)), []byte(class))

	return nil
}

// ID returns the surface's window id.
func (s *Surface) ID() xproto.Window {
	return s.win
}

// Geometry returns the output placement the surface was created for.
func (s *Surface) Geometry() Geometry {
	return s.geom
}

// Configured reports whether the server has granted a size yet.
func (s *Surface) Configured() bool {
	return s.configured
}

// AwaitingFrame reports whether a presented frame has not completed yet.
// While true, presenting again would outrun the server.
func (s *Surface) AwaitingFrame() bool {
	return s.awaiting
}

// Size returns the dimensions the pool is currently allocated for.
func (s *Surface) Size() (width, height int) {
	return s.pool.Size()
}

// SetSize records the server-granted size and reallocates the pool when
// possible. With a frame in flight the reallocation is deferred; FrameDone
// finishes it. The first call marks the surface configured.
func (s *Surface) SetSize(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.targetW, s.targetH = width, height
	s.configured = true
	return s.applySize()
}

// SizeSettled reports whether the pool matches the last granted size.
// While false, a resize is pending behind an in-flight frame and new
// frames would come out at a stale size.
func (s *Surface) SizeSettled() bool {
	w, h := s.pool.Size()
	return s.configured && w == s.targetW && h == s.targetH
}

// applySize brings the pool to the target dimensions once no frame is in
// flight.
func (s *Surface) applySize() error {
	w, h := s.pool.Size()
	if w == s.targetW && h == s.targetH {
		return nil
	}
	if !s.pool.Idle() {
		return nil
	}
	return s.pool.Resize(s.targetW, s.targetH)
}

// Acquire hands out a free buffer for drawing. It fails until the surface
// is configured and its pool settled at the granted size.
func (s *Surface) Acquire() (*Buffer, error) {
	if !s.SizeSettled() {
		return nil, ErrNoFreeBuffer
	}
	return s.pool.Acquire()
}

// Present submits the drawn buffer to the server and asks for a completion
// event. The buffer stays reserved until FrameDone releases it.
func (s *Surface) Present(b *Buffer) error {
	if err := s.pool.Ready(b); err != nil {
		return err
	}
	w, h := s.pool.Size()
	err := shm.PutImageChecked(s.conn, xproto.Drawable(s.win), s.gc,
		uint16(w), uint16(h), 0, 0, uint16(w), uint16(h), 0, 0,
		s.depth, xproto.ImageFormatZPixmap, 1, b.Seg(), 0).Check()
	if err != nil {
		return &ProtocolError{Op: "put image", Err: err}
	}
	if err := s.pool.Displayed(b); err != nil {
		return err
	}
	s.awaiting = true
	return nil
}

// FrameDone handles the server's completion for the segment: the buffer
// becomes free again and any deferred resize is applied.
func (s *Surface) FrameDone(seg shm.Seg) error {
	if err := s.pool.Release(seg); err != nil {
		return err
	}
	s.awaiting = false
	return s.applySize()
}

// Destroy tears the surface down: graphics context, window and pool. Safe
// to call on a partially constructed surface.
func (s *Surface) Destroy() {
	if s.gc != 0 {
		xproto.FreeGC(s.conn, s.gc)
		s.gc = 0
	}
	xproto.DestroyWindow(s.conn, s.win)
	s.pool.Destroy()
	s.configured = false
	s.awaiting = false
}

// Forget releases the surface's local resources after the server already
// destroyed the window. Unlike Destroy it never touches the window id,
// which is dead and may have been reused.
func (s *Surface) Forget() {
	if s.gc != 0 {
		xproto.FreeGC(s.conn, s.gc)
		s.gc = 0
	}
	s.pool.Destroy()
	s.configured = false
	s.awaiting = false
}
