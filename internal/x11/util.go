package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// AddToSaveSet inserts win into the server's save-set, so that if the
// manager's connection dies unexpectedly the server reparents win back to
// the root instead of destroying it along with its (now-gone) frame.
func (c *Conn) AddToSaveSet(win xproto.Window) error {
	return xproto.ChangeSaveSetChecked(c.XU.Conn(), xproto.SetModeInsert, win).Check()
}

// RemoveFromSaveSet removes win from the save-set, called once a client is
// properly unmanaged (destroyed or withdrawn) rather than orphaned by a
// crash.
func (c *Conn) RemoveFromSaveSet(win xproto.Window) error {
	return xproto.ChangeSaveSetChecked(c.XU.Conn(), xproto.SetModeDelete, win).Check()
}

// Reparent moves win to be a child of parent at the given offset, the
// operation that turns an ordinary top-level window into a framed client.
func (c *Conn) Reparent(win, parent xproto.Window, x, y int16) error {
	return xproto.ReparentWindowChecked(c.XU.Conn(), win, parent, x, y).Check()
}

// SendConfigureNotify synthesizes a ConfigureNotify for win reporting rect,
// satisfying ICCCM's requirement that a client be told its final geometry
// even when the frame's own resize didn't move the client window itself
// (e.g. a border-only resize).
func (c *Conn) SendConfigureNotify(win xproto.Window, rect Rect, borderWidth uint16) error {
	ev := xproto.ConfigureNotifyEvent{
		Event:            win,
		Window:           win,
		AboveSibling:     0,
		X:                int16(rect.X),
		Y:                int16(rect.Y),
		Width:            uint16(rect.Width),
		Height:           uint16(rect.Height),
		BorderWidth:      borderWidth,
		OverrideRedirect: false,
	}
	return xproto.SendEventChecked(
		c.XU.Conn(), false, win, xproto.EventMaskStructureNotify,
		string(ev.Bytes()),
	).Check()
}

// SendClientMessage delivers a WM_PROTOCOLS-style client message (e.g.
// WM_DELETE_WINDOW) to win, per ICCCM §4.2.8.
func (c *Conn) SendClientMessage(win xproto.Window, protocolAtom xproto.Atom, data0 uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.Atoms.MustIntern(AtomWMProtocols),
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(protocolAtom), data0, 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(
		c.XU.Conn(), false, win, xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// SendTypedClientMessage delivers a client message of type msgType directly
// (as opposed to SendClientMessage's WM_PROTOCOLS wrapping), used for the
// root-targeted private protocols like _DIM_TAGSET_UPDATE and _DIM_WM_EXIT
// that have no WM_PROTOCOLS indirection of their own.
func (c *Conn) SendTypedClientMessage(win xproto.Window, msgType xproto.Atom, data0, data1 uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   msgType,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{data0, data1, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XU.Conn(), false, win, xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// SelectInput changes the event mask win reports to the manager, used both
// when adopting a client (frame events) and when tearing one down (zero
// mask, to avoid spurious UnmapNotify during our own teardown sequence).
func (c *Conn) SelectInput(win xproto.Window, mask uint32) error {
	return xproto.ChangeWindowAttributesChecked(
		c.XU.Conn(), win, xproto.CwEventMask, []uint32{mask},
	).Check()
}
