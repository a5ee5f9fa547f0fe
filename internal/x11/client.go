// Package x11 implements walkbg's display-server client: the connection
// handshake with capability verification, per-output geometry discovery,
// background-layer surfaces and their shared-memory frame pools.
//
// The client assumes nothing about the environment beyond what it verifies
// at connect time: the MIT-SHM extension must be present and the window
// manager must implement EWMH far enough to honor desktop-type windows.
// Everything else, like RandR multi-head layout, is optional with a
// fallback.
package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/shm"
	"github.com/jezek/xgb/xproto"
)

// Geometry is the placement of one output in root-window coordinates.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// Client owns the connection to the X server and the surfaces created on
// it. Apart from the event pump, which only reads from the wire, the
// client is confined to the frame loop's goroutine.
type Client struct {
	conn     *xgb.Conn
	setup    *xproto.SetupInfo
	screen   *xproto.ScreenInfo
	atoms    *atomCache
	randrOK  bool
	closed   bool
	surfaces map[xproto.Window]*Surface
}

// Connect establishes a connection to the display server and verifies the
// capabilities walkbg depends on. display selects the server the way the
// DISPLAY environment variable does; empty uses the environment's default.
//
// A missing capability returns *UnsupportedError; a failed connection or
// handshake request returns *ProtocolError.
func Connect(display string) (*Client, error) {
	var (
		conn *xgb.Conn
		err  error
	)
	if display == "" {
		conn, err = xgb.NewConn()
	} else {
		conn, err = xgb.NewConnDisplay(display)
	}
	if err != nil {
		return nil, &ProtocolError{Op: "connect", Err: err}
	}

	c := &Client{
		conn:     conn,
		setup:    xproto.Setup(conn),
		atoms:    newAtomCache(conn),
		surfaces: make(map[xproto.Window]*Surface),
	}
	c.screen = c.setup.DefaultScreen(conn)

	if err := c.verifyCapabilities(); err != nil {
		conn.Close()
		return nil, err
	}

	// RandR is optional; without it every surface spans the root window.
	c.randrOK = randr.Init(conn) == nil

	return c, nil
}

// verifyCapabilities checks the session against walkbg's hard requirements
// and returns *UnsupportedError naming the first missing one.
func (c *Client) verifyCapabilities() error {
	// The rasterizer writes little-endian BGRX; a big-endian server would
	// swap the channels inside shared memory.
	if c.setup.ImageByteOrder != xproto.ImageOrderLSBFirst {
		return &UnsupportedError{Capability: "little-endian image byte order"}
	}

	// Shared-memory image transport. Init fails when the extension is
	// absent and registers its completion event otherwise.
	if err := shm.Init(c.conn); err != nil {
		return &UnsupportedError{Capability: "MIT-SHM extension"}
	}

	// An EWMH window manager must be running and honoring desktop-type
	// windows, or the surface would come up as a plain application window
	// in front of everything instead of behind it.
	supported, err := c.supportedAtoms()
	if err != nil {
		return err
	}
	if len(supported) == 0 {
		return &UnsupportedError{Capability: atomNetSupported + " (EWMH-compliant window manager)"}
	}
	desktop, err := c.atoms.atom(atomNetWMWindowTypeDesk)
	if err != nil {
		return err
	}
	if !containsAtom(supported, desktop) {
		return &UnsupportedError{Capability: atomNetWMWindowTypeDesk}
	}
	return nil
}

// supportedAtoms fetches the window manager's _NET_SUPPORTED list from the
// root window.
func (c *Client) supportedAtoms() ([]xproto.Atom, error) {
	prop, err := c.atoms.atom(atomNetSupported)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(c.conn, false, c.screen.Root, prop,
		xproto.AtomAtom, 0, 1024).Reply()
	if err != nil {
		return nil, &ProtocolError{Op: "read " + atomNetSupported, Err: err}
	}
	if reply == nil || reply.Format != 32 {
		return nil, nil
	}
	return parseAtomList(reply.Value), nil
}

// Outputs returns the geometry of every connected output. With RandR each
// active CRTC becomes one output; without it, or when RandR reports
// nothing usable, the whole root window counts as a single output.
func (c *Client) Outputs() []Geometry {
	if c.randrOK {
		if geoms := c.randrOutputs(); len(geoms) > 0 {
			return geoms
		}
	}
	return []Geometry{c.RootGeometry()}
}

// randrOutputs enumerates active CRTCs. Errors degrade to nil so the
// caller falls back to the root geometry.
func (c *Client) randrOutputs() []Geometry {
	res, err := randr.GetScreenResourcesCurrent(c.conn, c.screen.Root).Reply()
	if err != nil {
		return nil
	}
	var geoms []Geometry
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(c.conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Mode == 0 || info.Width == 0 || info.Height == 0 {
			// Disabled CRTC or stale reply; not an output.
			continue
		}
		geoms = append(geoms, Geometry{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return geoms
}

// RootGeometry returns the full root-window extent.
func (c *Client) RootGeometry() Geometry {
	return Geometry{
		Width:  int(c.screen.WidthInPixels),
		Height: int(c.screen.HeightInPixels),
	}
}

// Vendor returns the server's vendor string, for startup logging.
func (c *Client) Vendor() string {
	return c.setup.Vendor
}

// Surface returns the surface owning the given window, if any.
func (c *Client) Surface(win xproto.Window) (*Surface, bool) {
	s, ok := c.surfaces[win]
	return s, ok
}

// Surfaces calls fn for every live surface.
func (c *Client) Surfaces(fn func(*Surface)) {
	for _, s := range c.surfaces {
		fn(s)
	}
}

// Forget drops a surface whose window the server already destroyed. The
// window id is not touched; only local resources are released.
func (c *Client) Forget(win xproto.Window) {
	s, ok := c.surfaces[win]
	if !ok {
		return
	}
	s.Forget()
	delete(c.surfaces, win)
}

// Close destroys all surfaces and shuts the connection down, which also
// unblocks the event pump. Safe to call more than once.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for win, s := range c.surfaces {
		s.Destroy()
		delete(c.surfaces, win)
	}
	c.conn.Close()
}
