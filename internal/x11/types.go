package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// Keymod is a bitmask of X11 key modifiers (shift, control, the Mod1-5
// keys bound to alt/super/numlock/etc by the running xmodmap).
type Keymod uint16

// Modifier bits, matching the XGB ModMask* constants.
const (
	ModShift Keymod = 1 << 0
	ModLock  Keymod = 1 << 1
	ModCtrl  Keymod = 1 << 2
	Mod1     Keymod = 1 << 3 // usually Alt
	Mod2     Keymod = 1 << 4 // usually NumLock
	Mod3     Keymod = 1 << 5
	Mod4     Keymod = 1 << 6 // usually Super
	Mod5     Keymod = 1 << 7
	ModNone  Keymod = 0

	// modsIgnoredBase is the base set of modifiers masked out of every
	// incoming event's state before a binding lookup. NumLock's position is
	// not fixed by the protocol; it is filled in at runtime by
	// Conn.detectLockModifiers and OR'd into this base.
	modsIgnoredBase Keymod = ModLock
)

// InputState is the up/down state of a key or button.
type InputState int

const (
	StateDown InputState = iota
	StateUp
)

// Point is a location on the root window in screen pixels.
type Point struct {
	X, Y int16
}

// Rect is an axis-aligned rectangle in root-window coordinates, used for
// client/frame geometry, CRTC bounds and snap-target edges.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// Left, Right, Top and Bottom return the rectangle's four edges.
func (r Rect) Left() int32   { return r.X }
func (r Rect) Right() int32  { return r.X + int32(r.Width) }
func (r Rect) Top() int32    { return r.Y }
func (r Rect) Bottom() int32 { return r.Y + int32(r.Height) }

// Win is an alias for xproto.Window, kept short because it appears in
// nearly every signature in the wm package.
type Win = xproto.Window
