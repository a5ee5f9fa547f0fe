// Package x11 provides atom interning and property marshaling helpers.
package x11

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Atom names used by walkbg. Interning goes through the cache, so these
// are spelled out once.
const (
	atomNetSupported        = "_NET_SUPPORTED"
	atomNetWMWindowType     = "_NET_WM_WINDOW_TYPE"
	atomNetWMWindowTypeDesk = "_NET_WM_WINDOW_TYPE_DESKTOP"
	atomNetWMState          = "_NET_WM_STATE"
	atomNetWMStateBelow     = "_NET_WM_STATE_BELOW"
	atomNetWMStateSticky    = "_NET_WM_STATE_STICKY"
	atomNetWMStateSkipTask  = "_NET_WM_STATE_SKIP_TASKBAR"
	atomNetWMStateSkipPager = "_NET_WM_STATE_SKIP_PAGER"
	atomNetWMDesktop        = "_NET_WM_DESKTOP"
	atomNetWMName           = "_NET_WM_NAME"
	atomUTF8String          = "UTF8_STRING"
)

// atomCache interns X11 atoms on demand and remembers the replies, so each
// name costs at most one round trip per connection.
type atomCache struct {
	conn  *xgb.Conn
	atoms map[string]xproto.Atom
}

// newAtomCache creates an empty cache over the connection.
func newAtomCache(conn *xgb.Conn) *atomCache {
	return &atomCache{
		conn:  conn,
		atoms: make(map[string]xproto.Atom),
	}
}

// atom retrieves or interns an atom by name.
func (a *atomCache) atom(name string) (xproto.Atom, error) {
	if atom, ok := a.atoms[name]; ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(a.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, &ProtocolError{Op: "intern atom " + name, Err: err}
	}

	a.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// atoms resolves several names at once, preserving order.
func (a *atomCache) atomList(names ...string) ([]xproto.Atom, error) {
	out := make([]xproto.Atom, len(names))
	for i, name := range names {
		atom, err := a.atom(name)
		if err != nil {
			return nil, err
		}
		out[i] = atom
	}
	return out, nil
}

// parseAtomList decodes a 32-bit-format property value into atoms.
// Trailing partial words are dropped.
func parseAtomList(value []byte) []xproto.Atom {
	atoms := make([]xproto.Atom, 0, len(value)/4)
	for i := 0; i+4 <= len(value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(value[i:])))
	}
	return atoms
}

// marshalAtoms encodes atoms as a 32-bit-format property value.
func marshalAtoms(atoms []xproto.Atom) []byte {
	data := make([]byte, len(atoms)*4)
	for i, a := range atoms {
		xgb.Put32(data[i*4:], uint32(a))
	}
	return data
}

// containsAtom reports whether list holds want.
func containsAtom(list []xproto.Atom, want xproto.Atom) bool {
	for _, a := range list {
		if a == want {
			return true
		}
	}
	return false
}
