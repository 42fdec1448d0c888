// Package wm implements the window-manager core described by the manager
// specification: client adoption and decoration, focus policy, interactive
// move/resize, and the tag engine. It is built on top of internal/x11,
// except for a few requests (GetGeometry, QueryTree, GetWindowAttributes
// and the ConfigureRequest passthrough) that it issues through xproto
// directly.
package wm

import (
	"github.com/dimwm/dimwm/internal/x11"
)

// ICCCM WM_STATE values (ICCCM §4.1.3.1).
const (
	WithdrawnState = 0
	NormalState    = 1
	IconicState    = 3
)

// NetState flags mirror the _NET_WM_STATE atoms the core understands.
// They are stored as a set on Client rather than a raw atom list so the
// rest of the package never re-parses atom names on the hot path.
type NetState struct {
	Fullscreen bool
	MaxHorz    bool
	MaxVert    bool
	Above      bool
}

// Any reports whether at least one state flag is set.
func (s NetState) Any() bool {
	return s.Fullscreen || s.MaxHorz || s.MaxVert || s.Above
}

// Client is a managed top-level window. Invariant: for every Client in
// NormalState, Frame is nonzero and the client window is reparented into
// it; Frame's geometry equals Geometry inflated by (Border,
// Border+TitlebarHeight, Border, Border).
type Client struct {
	Win   x11.Win
	Frame x11.Win

	Geometry     x11.Rect
	LastGeometry x11.Rect // pre-maximize/fullscreen geometry, for restore
	Border       uint16

	State    int
	NetState NetState

	SizeHints x11.SizeHints
	WMHints   x11.WMHints

	TransientFor x11.Win // 0 if none

	Instance string
	Class    string
	Title    string

	Tags map[string]bool

	Protocols map[string]bool

	// OverrideRedirect windows are never managed, but the field is kept
	// on the struct so adoption can record the distinction before
	// deciding whether to wrap it in a Frame at all.
	OverrideRedirect bool

	decorator *Decorator
}

// FrameGeometry returns the frame's geometry given the client's current
// Geometry, Border and titlebar height.
func (c *Client) FrameGeometry(titlebarHeight uint16) x11.Rect {
	b := int32(c.Border)
	return x11.Rect{
		X:      c.Geometry.X - b,
		Y:      c.Geometry.Y - b - int32(titlebarHeight),
		Width:  c.Geometry.Width + uint32(2*b),
		Height: c.Geometry.Height + uint32(2*b) + uint32(titlebarHeight),
	}
}

// Sticky reports whether the client carries the wildcard tag, making it
// visible under (almost) every tagset.
func (c *Client) Sticky() bool {
	return c.Tags[TagWildcard]
}

// HasTag reports whether the client carries the named tag.
func (c *Client) HasTag(name string) bool {
	return c.Tags[name]
}

// SetTags replaces the client's in-memory tag set. Persisting it to the
// X window's _DIM_TAGS property is the caller's responsibility (see
// Manager.SetClientTags), keeping this type free of any direct X11 calls.
func (c *Client) SetTags(tags []string) {
	c.Tags = make(map[string]bool, len(tags))
	for _, t := range tags {
		c.Tags[t] = true
	}
}

// TagList returns the client's tags as a slice, for property writes and
// display.
func (c *Client) TagList() []string {
	out := make([]string, 0, len(c.Tags))
	for t := range c.Tags {
		out = append(out, t)
	}
	return out
}

// AcceptsInputFocus reports whether the client should ever receive
// SetInputFocus, per WM_HINTS.InputHint (ICCCM §4.1.7) and excluding
// override-redirect windows entirely.
func (c *Client) AcceptsInputFocus() bool {
	if c.OverrideRedirect {
		return false
	}
	if !c.WMHints.Has(hintInputFlag) {
		return true // absent InputHint defaults to "true" per ICCCM
	}
	return c.WMHints.Input
}

// SupportsTakeFocus reports whether the client declared WM_TAKE_FOCUS
// support in WM_PROTOCOLS.
func (c *Client) SupportsTakeFocus() bool {
	return c.Protocols[x11.AtomWMTakeFocus]
}

// SupportsDeleteWindow reports whether the client declared
// WM_DELETE_WINDOW support in WM_PROTOCOLS.
func (c *Client) SupportsDeleteWindow() bool {
	return c.Protocols[x11.AtomWMDeleteWindow]
}

// hintInputFlag mirrors icccm.HintInput, duplicated here so this package
// never imports xgbutil/icccm directly (only internal/x11 does).
const hintInputFlag = 1 << 0
