// Package x11 provides the event pump bridging the wire protocol to the
// frame loop.
package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shm"
	"github.com/jezek/xgb/xproto"
)

// Event is one display-server occurrence, translated into frame-loop
// vocabulary. The concrete types below are the only implementations.
type Event interface {
	event()
}

// Configured reports the size the server granted a surface. The first one
// after mapping completes the surface's setup; later ones mean the output
// changed.
type Configured struct {
	Window xproto.Window
	Width  int
	Height int
}

// FrameDone reports that the server finished reading a presented frame.
// The segment identifies which buffer is free again.
type FrameDone struct {
	Window xproto.Window
	Seg    shm.Seg
}

// Exposed reports that a surface's contents were lost and must be
// repainted.
type Exposed struct {
	Window xproto.Window
}

// Closed reports that a surface's window was destroyed from outside.
type Closed struct {
	Window xproto.Window
}

// Disconnected reports that the server hung up. No further events follow.
type Disconnected struct{}

// Fault carries an asynchronous protocol error, such as the server
// rejecting an earlier unchecked request.
type Fault struct {
	Err error
}

func (Configured) event()   {}
func (FrameDone) event()    {}
func (Exposed) event()      {}
func (Closed) event()       {}
func (Disconnected) event() {}
func (Fault) event()        {}

// translate converts a wire event into a frame-loop event, or nil for
// kinds the loop does not care about. Expose storms coalesce down to the
// final event of each series.
func translate(ev xgb.Event) Event {
	switch e := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		return Configured{Window: e.Window, Width: int(e.Width), Height: int(e.Height)}
	case shm.CompletionEvent:
		return FrameDone{Window: xproto.Window(e.Drawable), Seg: e.Shmseg}
	case xproto.ExposeEvent:
		if e.Count > 0 {
			return nil
		}
		return Exposed{Window: e.Window}
	case xproto.DestroyNotifyEvent:
		return Closed{Window: e.Window}
	default:
		return nil
	}
}

// Pump reads wire events and forwards translated ones to ch until the
// connection dies or stop closes. It closes ch on exit. Run it in its own
// goroutine; the only way to interrupt WaitForEvent is closing the
// connection, which makes it return a Disconnected condition.
func (c *Client) Pump(stop <-chan struct{}, ch chan<- Event) {
	defer close(ch)
	send := func(e Event) bool {
		select {
		case ch <- e:
			return true
		case <-stop:
			return false
		}
	}

	conn := c.conn
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			send(Disconnected{})
			return
		}
		if xerr != nil {
			if !send(Fault{Err: &ProtocolError{Op: "async request", Err: xerr}}) {
				return
			}
			continue
		}
		if out := translate(ev); out != nil {
			if !send(out) {
				return
			}
		}
	}
}
