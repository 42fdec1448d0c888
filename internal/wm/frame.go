package wm

import (
	"github.com/dimwm/dimwm/internal/x11"
	"github.com/pkg/errors"
)

// Decorator owns a client's titlebar subwindow and border color, and
// converts the titlebar into an inline minibuffer-style text entry on
// demand. It never touches the client window itself.
type Decorator struct {
	conn *x11.Conn

	frame    x11.Win
	titlebar x11.Win

	height uint16
	border uint16

	focusedColor   uint32
	unfocusedColor uint32

	title string

	entry *Minibuffer // non-nil while the titlebar is acting as a text field
}

// NewDecorator creates the frame and titlebar windows for a client about
// to be adopted: an ordinary (non-override-redirect) frame window with
// SubstructureNotify and ButtonPress selected on it.
func NewDecorator(conn *x11.Conn, geom x11.Rect, height, border uint16, focused, unfocused uint32) (*Decorator, error) {
	d := &Decorator{
		conn: conn, height: height, border: border,
		focusedColor: focused, unfocusedColor: unfocused,
	}
	frame, err := conn.CreateWindow(geom, border, unfocused)
	if err != nil {
		return nil, errors.Wrap(err, "create frame")
	}
	d.frame = frame

	if err := conn.SelectInput(frame, eventMaskFrame); err != nil {
		return nil, errors.Wrap(err, "select frame input")
	}

	tbGeom := x11.Rect{X: 0, Y: 0, Width: geom.Width, Height: uint32(height)}
	titlebar, err := conn.CreateWindow(tbGeom, 0, unfocused)
	if err != nil {
		return nil, errors.Wrap(err, "create titlebar")
	}
	d.titlebar = titlebar
	if err := conn.Reparent(titlebar, frame, 0, 0); err != nil {
		return nil, errors.Wrap(err, "reparent titlebar into frame")
	}
	if err := conn.SelectInput(titlebar, eventMaskTitlebar); err != nil {
		return nil, errors.Wrap(err, "select titlebar input")
	}
	return d, nil
}

const (
	eventMaskFrame    = 1<<19 | 1<<2 // SubstructureNotify | ButtonPress
	eventMaskTitlebar = 1 << 2       // ButtonPress
)

// Frame returns the manager-owned parent window.
func (d *Decorator) Frame() x11.Win { return d.frame }

// Titlebar returns the titlebar subwindow.
func (d *Decorator) Titlebar() x11.Win { return d.titlebar }

// Resize updates the frame and titlebar geometry to match the client's
// new outer size. geom is the caller's computed FrameGeometry; the
// titlebar always spans the frame's full width at its fixed height.
func (d *Decorator) Resize(geom x11.Rect) error {
	if err := d.conn.ConfigureWindow(d.frame, geom, d.border); err != nil {
		return errors.Wrap(err, "configure frame")
	}
	tbGeom := x11.Rect{X: 0, Y: 0, Width: geom.Width, Height: uint32(d.height)}
	if err := d.conn.ConfigureWindow(d.titlebar, tbGeom, 0); err != nil {
		return errors.Wrap(err, "configure titlebar")
	}
	return nil
}

// Redraw recolors the frame border and titlebar background according to
// focus state.
func (d *Decorator) Redraw(focused bool) error {
	color := d.unfocusedColor
	if focused {
		color = d.focusedColor
	}
	if err := d.conn.SetBorderColor(d.frame, color); err != nil {
		return errors.Wrap(err, "set frame border color")
	}
	if err := d.conn.SetBackground(d.titlebar, color); err != nil {
		return errors.Wrap(err, "set titlebar background")
	}
	return nil
}

// SetTitle updates the cached title string; the manager is responsible
// for actually drawing it once a text-rasterization collaborator is wired
// in (explicitly out of scope).
func (d *Decorator) SetTitle(title string) {
	d.title = title
}

// Title returns the cached title string.
func (d *Decorator) Title() string { return d.title }

// BeginTextEntry converts the titlebar into an inline minibuffer-style
// text entry. It delegates the actual editing state machine to Minibuffer
// so both the titlebar and the dedicated minibuffer window share one
// implementation.
func (d *Decorator) BeginTextEntry(prompt, initial string, commit, rollback func(string), now uint32) {
	d.entry = NewMinibuffer(prompt, initial, commit, rollback)
}

// EndTextEntry clears the inline entry state, reverting the titlebar to
// showing the cached title.
func (d *Decorator) EndTextEntry() {
	d.entry = nil
}

// Entry returns the active inline text-entry state, or nil if the
// titlebar isn't currently acting as one.
func (d *Decorator) Entry() *Minibuffer { return d.entry }

// Destroy tears down the frame and titlebar windows. Called on unmanage,
// after the client has been reparented back to root.
func (d *Decorator) Destroy() error {
	return d.conn.DestroyWindow(d.frame)
}
