package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// CreateWindow creates an InputOutput window as a child of the root,
// with the given geometry, border width and background pixel. It is used
// for frames and titlebars, the decoration windows the manager itself owns
// rather than adopts.
func (c *Conn) CreateWindow(geom Rect, borderWidth uint16, bg uint32) (xproto.Window, error) {
	win, err := xproto.NewWindowId(c.XU.Conn())
	if err != nil {
		return 0, err
	}
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask)
	values := []uint32{bg, 0, 0}
	err = xproto.CreateWindowChecked(
		c.XU.Conn(),
		c.screen.RootDepth,
		win, c.root,
		int16(geom.X), int16(geom.Y), uint16(geom.Width), uint16(geom.Height),
		borderWidth,
		xproto.WindowClassInputOutput,
		c.screen.RootVisual,
		mask, values,
	).Check()
	if err != nil {
		return 0, err
	}
	return win, nil
}

// CreateOverrideRedirectWindow is identical to CreateWindow except the new
// window bypasses window-manager redirection entirely, for windows that
// must never themselves be adopted by the manager's own SubstructureRedirect
// selection (the minibuffer and the move/resize guideline overlay).
func (c *Conn) CreateOverrideRedirectWindow(geom Rect, bg uint32) (xproto.Window, error) {
	win, err := xproto.NewWindowId(c.XU.Conn())
	if err != nil {
		return 0, err
	}
	mask := uint32(xproto.CwBackPixel | xproto.CwOverrideRedirect)
	values := []uint32{bg, 1}
	err = xproto.CreateWindowChecked(
		c.XU.Conn(),
		c.screen.RootDepth,
		win, c.root,
		int16(geom.X), int16(geom.Y), uint16(geom.Width), uint16(geom.Height),
		0,
		xproto.WindowClassInputOutput,
		c.screen.RootVisual,
		mask, values,
	).Check()
	if err != nil {
		return 0, err
	}
	return win, nil
}

// DestroyWindow destroys a manager-owned window (never call this on an
// adopted client window — use Reparent back to root and UnmapWindow
// instead).
func (c *Conn) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.XU.Conn(), win).Check()
}

// MapWindow and UnmapWindow request the server map/unmap win.
func (c *Conn) MapWindow(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XU.Conn(), win).Check()
}

func (c *Conn) UnmapWindow(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XU.Conn(), win).Check()
}

// ConfigureWindow issues a one-shot geometry change, used both for the
// frame (outer resize/move) and the client window itself (inner resize to
// account for the titlebar).
func (c *Conn) ConfigureWindow(win xproto.Window, geom Rect, borderWidth uint16) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	values := []uint32{
		uint32(int32(geom.X)), uint32(int32(geom.Y)),
		geom.Width, geom.Height,
		uint32(borderWidth),
	}
	return xproto.ConfigureWindowChecked(c.XU.Conn(), win, mask, values).Check()
}

// Restack raises or lowers win relative to the stacking order. above=true
// raises it to the top of the stack.
func (c *Conn) Restack(win xproto.Window, above bool) error {
	mode := uint32(xproto.StackModeBelow)
	if above {
		mode = xproto.StackModeAbove
	}
	return xproto.ConfigureWindowChecked(
		c.XU.Conn(), win, xproto.ConfigWindowStackMode, []uint32{mode},
	).Check()
}

// SetBorderColor changes win's border pixel, used by the decorator to
// reflect focus state.
func (c *Conn) SetBorderColor(win xproto.Window, pixel uint32) error {
	return xproto.ChangeWindowAttributesChecked(
		c.XU.Conn(), win, xproto.CwBorderPixel, []uint32{pixel},
	).Check()
}

// SetBackground changes win's background pixel and repaints it
// immediately, used by the titlebar to reflect focus state.
func (c *Conn) SetBackground(win xproto.Window, pixel uint32) error {
	if err := xproto.ChangeWindowAttributesChecked(
		c.XU.Conn(), win, xproto.CwBackPixel, []uint32{pixel},
	).Check(); err != nil {
		return err
	}
	return xproto.ClearAreaChecked(c.XU.Conn(), false, win, 0, 0, 0, 0).Check()
}

// SetInputFocus directs keyboard focus to win, or to the root window if
// win is 0.
func (c *Conn) SetInputFocus(win xproto.Window, t xproto.Timestamp) error {
	if win == 0 {
		win = c.root
	}
	return xproto.SetInputFocusChecked(
		c.XU.Conn(), xproto.InputFocusPointerRoot, win, t,
	).Check()
}

// SelectPropertyChange adds PropertyChange to win's event mask on this
// connection only. A short-lived remote-control connection uses this to
// observe a PropertyNotify it's about to provoke, without disturbing
// whatever mask the long-running manager already selected on win from its
// own, separate connection.
func (c *Conn) SelectPropertyChange(win xproto.Window) error {
	return xproto.ChangeWindowAttributesChecked(
		c.XU.Conn(), win, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange},
	).Check()
}

// WarpPointer moves the pointer to (x, y) relative to win, used to keep
// the cursor anchored during a move/resize started via a keybinding
// rather than a pointer grab.
func (c *Conn) WarpPointer(win xproto.Window, x, y int16) error {
	return xproto.WarpPointerChecked(
		c.XU.Conn(), 0, win, 0, 0, 0, 0, x, y,
	).Check()
}

// GrabPointer takes an active pointer grab over the root window's cursor,
// confined to no window, for the duration of an interactive move/resize.
func (c *Conn) GrabPointer(cursor xproto.Cursor, t xproto.Timestamp) error {
	const mask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion
	reply, err := xproto.GrabPointer(
		c.XU.Conn(), false, c.root, mask,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		0, cursor, t,
	).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return errGrabFailed
	}
	return nil
}

// UngrabPointer releases a pointer grab taken by GrabPointer.
func (c *Conn) UngrabPointer(t xproto.Timestamp) error {
	return xproto.UngrabPointerChecked(c.XU.Conn(), t).Check()
}

// ChangeGrabCursor swaps the cursor glyph shown over an already-active
// pointer grab, used when an interactive resize cycles to a different edge.
func (c *Conn) ChangeGrabCursor(cursor xproto.Cursor, t xproto.Timestamp) error {
	const mask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion
	return xproto.ChangeActivePointerGrabChecked(c.XU.Conn(), cursor, t, mask).Check()
}

// CreateCursor loads a glyph from the core X cursor font (the standard
// thirty-odd-glyph set: arrows, crosshairs, edge/corner resize indicators)
// for use as a pointer grab's visual feedback.
func (c *Conn) CreateCursor(glyph uint16) (xproto.Cursor, error) {
	return xcursor.CreateCursor(c.XU, glyph)
}

// GrabKeyboard takes an active keyboard grab over the root window, used
// while the modal focus-cycle popup is open.
func (c *Conn) GrabKeyboard(t xproto.Timestamp) error {
	reply, err := xproto.GrabKeyboard(
		c.XU.Conn(), false, c.root, t,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
	).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return errGrabFailed
	}
	return nil
}

// UngrabKeyboard releases a keyboard grab taken by GrabKeyboard.
func (c *Conn) UngrabKeyboard(t xproto.Timestamp) error {
	return xproto.UngrabKeyboardChecked(c.XU.Conn(), t).Check()
}

// GrabKey/UngrabKey register or release a passive key grab on the root
// window, the mechanism bindings actually rely on to receive KeyPress
// without an active grab held the whole session.
func (c *Conn) GrabKey(mods Keymod, key xproto.Keycode) error {
	return xproto.GrabKeyChecked(
		c.XU.Conn(), true, c.root, uint16(mods), key,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
	).Check()
}

func (c *Conn) UngrabKey(mods Keymod, key xproto.Keycode) error {
	return xproto.UngrabKeyChecked(c.XU.Conn(), key, c.root, uint16(mods)).Check()
}

// GrabButton/UngrabButton register or release a passive button grab on
// win, used both for click-to-focus and for move/resize bindings that
// start on the frame or titlebar.
func (c *Conn) GrabButton(win xproto.Window, mods Keymod, button xproto.Button) error {
	const mask = xproto.EventMaskButtonPress
	return xproto.GrabButtonChecked(
		c.XU.Conn(), false, win, mask,
		xproto.GrabModeSync, xproto.GrabModeAsync,
		0, 0, button, uint16(mods),
	).Check()
}

func (c *Conn) UngrabButton(win xproto.Window, mods Keymod, button xproto.Button) error {
	return xproto.UngrabButtonChecked(c.XU.Conn(), button, win, uint16(mods)).Check()
}

// GrabButtonAnyModifier grabs button on win regardless of which modifiers
// are held, the passive grab ClickToFocus needs so a plain click is seen
// even when it carries no binding of its own.
func (c *Conn) GrabButtonAnyModifier(win xproto.Window, button xproto.Button) error {
	const mask = xproto.EventMaskButtonPress
	return xproto.GrabButtonChecked(
		c.XU.Conn(), false, win, mask,
		xproto.GrabModeSync, xproto.GrabModeAsync,
		0, 0, button, xproto.ModMaskAny,
	).Check()
}

// AllowEvents replays a synchronously-grabbed button press through to the
// client, used once the manager has decided a click-to-focus press
// shouldn't also be consumed.
func (c *Conn) AllowEvents(mode byte, t xproto.Timestamp) error {
	return xproto.AllowEventsChecked(c.XU.Conn(), mode, t).Check()
}

type grabError struct{ msg string }

func (e *grabError) Error() string { return e.msg }

var errGrabFailed = &grabError{"grab failed: pointer or keyboard already grabbed"}
