// Package x11 wraps the X11 wire protocol for the core: atom interning,
// typed property access and the event demultiplexer. internal/wm talks to
// windows, geometry and events mostly through the types defined here, and
// issues a few requests through xproto directly.
//
// Good luck to anyone who needs to modify this file. X is a minefield.
package x11

import (
	"context"
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// ErrConnectionDied is returned from the event loop when the server closes
// the connection out from under the manager (X crash, VT switch teardown).
var ErrConnectionDied = errors.New("connection with X server closed")

// ErrAnotherWM is returned by Conn.BecomeWM when substructure-redirect
// selection on the root window is denied, meaning another window manager
// already owns it.
var ErrAnotherWM = errors.New("another window manager is already running")

// Conn wraps the X server connection plus the cross-cutting services every
// higher layer needs: atom cache, event demultiplexer and (optionally)
// RandR CRTC geometry. One Conn is created per manager instance and is not
// safe for use after Close.
type Conn struct {
	XU    *xgbutil.XUtil
	Atoms *Atoms
	Demux *Demux
	Props *Properties

	root   xproto.Window
	screen *xproto.ScreenInfo

	hasRandR     bool
	randREventID uint8

	// lockMods holds the modifier bits masked out of every binding lookup:
	// Lock, plus the Mod bit NumLock is bound to when detectLockModifiers
	// finds one. ScrollLock is not detected. The binding engine masks these
	// bits out of bound chords too, so a binding that names one of them
	// matches as if it did not.
	lockMods Keymod
}

// NewConn opens a connection to the X server named by $DISPLAY, primes the
// atom cache, and detects the RandR extension.
func NewConn() (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	c := &Conn{
		XU:     xu,
		root:   xu.RootWin(),
		screen: xproto.Setup(xu.Conn()).DefaultScreen(xu.Conn()),
	}
	c.Atoms = NewAtoms(xu)
	if err := c.Atoms.Prime(); err != nil {
		return nil, fmt.Errorf("prime atom cache: %w", err)
	}
	c.Demux = NewDemux(c)
	c.Props = NewProperties(c)
	c.detectLockModifiers()
	if err := randr.Init(xu.Conn()); err == nil {
		c.hasRandR = true
	}
	return c, nil
}

// Root returns the id of the root window.
func (c *Conn) Root() xproto.Window { return c.root }

// Screen returns the default screen's geometry.
func (c *Conn) Screen() Rect {
	return Rect{0, 0, uint32(c.screen.WidthInPixels), uint32(c.screen.HeightInPixels)}
}

// HasRandR reports whether the RandR extension was detected at startup.
func (c *Conn) HasRandR() bool { return c.hasRandR }

// BecomeWM attempts to select SubstructureRedirect|SubstructureNotify on
// the root window. Failure (BadAccess) means another WM already holds it;
// this is the one fatal startup error ErrAnotherWM reports.
func (c *Conn) BecomeWM() error {
	const mask = xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskPropertyChange
	err := xproto.ChangeWindowAttributesChecked(
		c.XU.Conn(), c.root, xproto.CwEventMask, []uint32{mask},
	).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrAnotherWM
		}
		return err
	}
	return nil
}

// Flush sends all buffered requests to the server. The manager calls this
// after any state-changing request that a synthetic event must observe in
// order.
func (c *Conn) Flush() {
	c.XU.Conn().Sync()
}

// Check blocks until the given cookie's request has either completed or
// errored, for calls on requests whose errors must be observed synchronously.
func Check(cookie xgb.VoidCookie) error {
	return cookie.Check()
}

// CurrentTime approximates the X server's notion of "now" with the last
// server timestamp the demultiplexer recorded from a dispatched event.
func (c *Conn) CurrentTime() xproto.Timestamp {
	return c.Demux.lastTime
}

// Close tears down the connection. It is safe to call multiple times.
func (c *Conn) Close() {
	if c.XU == nil || c.XU.Conn() == nil {
		return
	}
	c.XU.Conn().Close()
}

// WaitForEvent blocks until the next X event or error arrives. It is the
// only suspension point in the manager's single-threaded loop.
func (c *Conn) WaitForEvent() (xgb.Event, xgb.Error, error) {
	ev, err := c.XU.Conn().WaitForEvent()
	if ev == nil && err == nil {
		return nil, nil, ErrConnectionDied
	}
	if xerr, ok := err.(xgb.Error); ok {
		return nil, xerr, nil
	}
	return ev, nil, err
}

// Serve runs the event loop until ctx is cancelled or the connection dies,
// feeding every event to the demultiplexer. It is the manager's main loop
// body; callers run it directly rather than in a goroutine
// so that "single thread owns the connection" holds structurally.
func (c *Conn) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ev, xerr, err := c.WaitForEvent()
		if err != nil {
			return err
		}
		if xerr != nil {
			c.Demux.dispatchError(xerr)
			continue
		}
		c.Demux.dispatch(ev)
	}
}

// keysymNumLock is the X11 keysym value for Num_Lock (XK_Num_Lock), fixed
// by the protocol regardless of keyboard layout.
const keysymNumLock = 0xff7f

// detectLockModifiers queries the keyboard and modifier mappings and
// records which Mod bit (if any) NumLock is bound to, so bindings that
// don't explicitly mention NumLock still match with it held.
func (c *Conn) detectLockModifiers() {
	c.lockMods = modsIgnoredBase

	setup := xproto.Setup(c.XU.Conn())
	count := int(setup.MaxKeycode-setup.MinKeycode) + 1
	keymap, err := xproto.GetKeyboardMapping(
		c.XU.Conn(), setup.MinKeycode, byte(count),
	).Reply()
	if err != nil || keymap == nil || keymap.KeysymsPerKeycode == 0 {
		return
	}

	var numLockCode xproto.Keycode
	for i, sym := range keymap.Keysyms {
		if uint32(sym) != keysymNumLock {
			continue
		}
		numLockCode = setup.MinKeycode + xproto.Keycode(i/int(keymap.KeysymsPerKeycode))
		break
	}
	if numLockCode == 0 {
		return
	}

	modmap, err := xproto.GetModifierMapping(c.XU.Conn()).Reply()
	if err != nil || modmap == nil || modmap.KeycodesPerModifier == 0 {
		return
	}
	for i, code := range modmap.Keycodes {
		if code != numLockCode {
			continue
		}
		modIndex := i / int(modmap.KeycodesPerModifier)
		c.lockMods |= Keymod(1 << uint(modIndex))
		return
	}
}

// IgnoredModifiers returns the modifier bits that are masked out of an
// incoming event's state before a binding lookup.
func (c *Conn) IgnoredModifiers() Keymod {
	return c.lockMods
}
