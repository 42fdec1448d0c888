package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Format is the bit width of a property's values (8, 16 or 32), per
// ICCCM's GetProperty semantics.
type Format uint8

const (
	Format8  Format = 8
	Format16 Format = 16
	Format32 Format = 32
)

// SizeHints mirrors the fields of WM_NORMAL_HINTS that the size-hints
// engine (internal/wm) cares about. It is a thin rename of
// icccm.NormalHints so wm doesn't import xgbutil/icccm directly.
type SizeHints struct {
	Flags                      uint
	MinWidth, MinHeight        int32
	MaxWidth, MaxHeight        int32
	WidthInc, HeightInc        int32
	BaseWidth, BaseHeight      int32
	MinAspectNum, MinAspectDen int32
	MaxAspectNum, MaxAspectDen int32
	WinGravity                 uint
}

// Has reports whether the given icccm.SizeHint* flag is set.
func (h SizeHints) Has(flag uint) bool { return h.Flags&flag != 0 }

// WMHints mirrors the fields of WM_HINTS the focus policy consumes.
type WMHints struct {
	Flags uint
	Input bool
}

// Has reports whether the given icccm.Hint* flag is set.
func (h WMHints) Has(flag uint) bool { return h.Flags&flag != 0 }

// Properties is the typed property engine: one method pair (get/set) per
// semantic type, plus Watch for PropertyNotify subscriptions. The manager
// runs single-threaded off one event loop, so every Get* below is a plain
// synchronous round-trip with no concurrent-caller coalescing to do.
type Properties struct {
	conn *Conn

	mu       sync.Mutex
	watchers map[xproto.Window]map[string][]func()
}

// NewProperties creates a property engine bound to conn.
func NewProperties(conn *Conn) *Properties {
	return &Properties{
		conn:     conn,
		watchers: make(map[xproto.Window]map[string][]func()),
	}
}

// Watch registers fn to run whenever a PropertyNotify for (win, atomName)
// is dispatched. The caller is responsible for ensuring PropertyChange is
// selected on win.
func (p *Properties) Watch(win xproto.Window, atomName string, fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watchers[win] == nil {
		p.watchers[win] = make(map[string][]func())
	}
	p.watchers[win][atomName] = append(p.watchers[win][atomName], fn)
}

// Notify fires any watchers registered for (win, atom), and is called by
// the manager's PropertyNotify handler in the event loop.
func (p *Properties) Notify(win xproto.Window, atom xproto.Atom) {
	name, err := p.conn.Atoms.Name(atom)
	if err != nil {
		return
	}
	p.mu.Lock()
	fns := append([]func(){}, p.watchers[win][name]...)
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// GetString returns a window's string property (WM_NAME, WM_ICON_NAME, …).
func (p *Properties) GetString(win xproto.Window, atomName string) (string, bool, error) {
	reply, err := xprop.GetProperty(p.conn.XU, win, atomName)
	if err != nil {
		return "", false, nil // absent, not an error the caller needs to see
	}
	if reply == nil || len(reply.Value) == 0 {
		return "", false, nil
	}
	out, err := xprop.PropValStr(reply, nil)
	return out, err == nil, nil
}

// SetString sets a window's UTF8_STRING/STRING property.
func (p *Properties) SetString(win xproto.Window, atomName, value string) error {
	return xprop.ChangeProp(p.conn.XU, win, 8, atomName, "UTF8_STRING", []byte(value))
}

// GetAtomList returns a window's ATOM[] property (_NET_WM_STATE, WM_PROTOCOLS,
// _DIM_TAGS, …) decoded to atom names.
func (p *Properties) GetAtomList(win xproto.Window, atomName string) ([]string, error) {
	reply, err := xprop.GetProperty(p.conn.XU, win, atomName)
	names, err := xprop.PropValAtoms(p.conn.XU, reply, err)
	if err != nil {
		return nil, nil
	}
	return names, nil
}

// SetAtomList sets a window's ATOM[] property by name.
func (p *Properties) SetAtomList(win xproto.Window, atomName string, names []string) error {
	atoms := make([]uint32, len(names))
	for i, n := range names {
		a, err := p.conn.Atoms.Intern(n)
		if err != nil {
			return fmt.Errorf("intern %q: %w", n, err)
		}
		atoms[i] = uint32(a)
	}
	return xprop.ChangeProp32(p.conn.XU, win, atomName, "ATOM", toUints(atoms)...)
}

// GetWMState returns the ICCCM WM_STATE of win (Withdrawn/Normal/Iconic).
func (p *Properties) GetWMState(win xproto.Window) (int, bool) {
	st, err := icccm.WmStateGet(p.conn.XU, win)
	if err != nil || st == nil {
		return 0, false
	}
	return int(st.State), true
}

// SetWMState sets the ICCCM WM_STATE of win.
func (p *Properties) SetWMState(win xproto.Window, state int) error {
	return icccm.WmStateSet(p.conn.XU, win, &icccm.WmState{State: uint(state)})
}

// GetSizeHints decodes a window's WM_NORMAL_HINTS, defaulting every unset
// field to the ICCCM fallback (no min/max, inc=1, no aspect constraint).
func (p *Properties) GetSizeHints(win xproto.Window) SizeHints {
	nh, err := icccm.WmNormalHintsGet(p.conn.XU, win)
	out := SizeHints{WidthInc: 1, HeightInc: 1}
	if err != nil || nh == nil {
		return out
	}
	out.Flags = nh.Flags
	out.MinWidth, out.MinHeight = int32(nh.MinWidth), int32(nh.MinHeight)
	out.MaxWidth, out.MaxHeight = int32(nh.MaxWidth), int32(nh.MaxHeight)
	if nh.WidthInc > 0 {
		out.WidthInc = int32(nh.WidthInc)
	}
	if nh.HeightInc > 0 {
		out.HeightInc = int32(nh.HeightInc)
	}
	out.BaseWidth, out.BaseHeight = int32(nh.BaseWidth), int32(nh.BaseHeight)
	out.MinAspectNum, out.MinAspectDen = int32(nh.MinAspectNum), int32(nh.MinAspectDen)
	out.MaxAspectNum, out.MaxAspectDen = int32(nh.MaxAspectNum), int32(nh.MaxAspectDen)
	out.WinGravity = nh.WinGravity
	return out
}

// GetWMHints decodes a window's WM_HINTS.
func (p *Properties) GetWMHints(win xproto.Window) WMHints {
	h, err := icccm.WmHintsGet(p.conn.XU, win)
	if err != nil || h == nil {
		return WMHints{}
	}
	return WMHints{Flags: h.Flags, Input: h.Input != 0}
}

// GetProtocols returns the set of WM_PROTOCOLS atom names a client
// declares support for (WM_DELETE_WINDOW, WM_TAKE_FOCUS, …).
func (p *Properties) GetProtocols(win xproto.Window) map[string]bool {
	names, err := icccm.WmProtocolsGet(p.conn.XU, win)
	out := make(map[string]bool, len(names))
	if err != nil {
		return out
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}

// GetClass returns a window's WM_CLASS (instance, class).
func (p *Properties) GetClass(win xproto.Window) (instance, class string) {
	c, err := icccm.WmClassGet(p.conn.XU, win)
	if err != nil || c == nil {
		return "", ""
	}
	return c.Instance, c.Class
}

// GetTransientFor returns the window win declares itself transient for, if
// any.
func (p *Properties) GetTransientFor(win xproto.Window) (xproto.Window, bool) {
	w, err := icccm.WmTransientForGet(p.conn.XU, win)
	if err != nil || w == 0 {
		return 0, false
	}
	return w, true
}

// GetNetWMState returns the _NET_WM_STATE atom names currently set on win.
func (p *Properties) GetNetWMState(win xproto.Window) []string {
	names, err := p.GetAtomList(win, AtomNetWMState)
	if err != nil {
		return nil
	}
	return names
}

// SetNetWMState replaces a window's _NET_WM_STATE.
func (p *Properties) SetNetWMState(win xproto.Window, names []string) error {
	return ewmh.WmStateSet(p.conn.XU, win, names)
}

// SetNetActiveWindow updates the root window's _NET_ACTIVE_WINDOW to win,
// or to no window (0) when focus moves to the root/PointerRoot.
func (p *Properties) SetNetActiveWindow(win xproto.Window) error {
	return ewmh.ActiveWindowSet(p.conn.XU, win)
}

// SetNetSupported advertises the _NET_SUPPORTED atom list on the root
// window: the subset of EWMH this manager actually implements.
func (p *Properties) SetNetSupported(names []string) error {
	return ewmh.SupportedSet(p.conn.XU, names)
}

// GetCommand decodes the root window's WM_COMMAND, used to seed the
// self-restart argv.
func (p *Properties) GetCommand(root xproto.Window) []string {
	reply, err := xprop.GetProperty(p.conn.XU, root, AtomWMCommand)
	if err != nil || reply == nil {
		return nil
	}
	argv, err := xprop.PropValStrs(reply)
	if err != nil {
		return nil
	}
	return argv
}

// SetCommand writes WM_COMMAND on the root window, generating a
// PropertyNotify whose timestamp the --restart control path depends on.
func (p *Properties) SetCommand(root xproto.Window, argv []string) error {
	raw := make([]byte, 0, 64)
	for _, a := range argv {
		raw = append(raw, a...)
		raw = append(raw, 0)
	}
	return xprop.ChangeProp(p.conn.XU, root, 8, AtomWMCommand, "STRING", raw)
}

func toUints(xs []uint32) []uint {
	out := make([]uint, len(xs))
	for i, x := range xs {
		out[i] = uint(x)
	}
	return out
}
