package wm

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/wm/bind"
	"github.com/dimwm/dimwm/internal/x11"
	"github.com/pkg/errors"
)

// manage adopts win: creates its frame/titlebar, reparents it in, pulls
// its ICCCM/EWMH properties, and wires per-window event dispatch. adopting
// distinguishes a pre-existing window found at startup (already mapped,
// geometry must be preserved exactly) from a fresh MapRequest.
func (m *Manager) manage(win xproto.Window, adopting bool) error {
	if _, ok := m.clients[win]; ok {
		return nil
	}

	geom, err := xproto.GetGeometry(m.conn.XU.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return errors.Wrap(err, "get geometry")
	}

	c := &Client{
		Win:    win,
		Border: m.cfg.Appearance.BorderWidth,
		Geometry: x11.Rect{
			X: int32(geom.X), Y: int32(geom.Y),
			Width: uint32(geom.Width), Height: uint32(geom.Height),
		},
	}
	c.SizeHints = m.conn.Props.GetSizeHints(win)
	c.WMHints = m.conn.Props.GetWMHints(win)
	c.Protocols = m.conn.Props.GetProtocols(win)
	c.Instance, c.Class = m.conn.Props.GetClass(win)
	if tf, ok := m.conn.Props.GetTransientFor(win); ok {
		c.TransientFor = tf
	}
	if tags, err := m.conn.Props.GetAtomList(win, x11.AtomDimTags); err == nil {
		c.SetTags(tags)
	}
	if title, _, err := m.conn.Props.GetString(win, x11.AtomNetWMName); err == nil && title != "" {
		c.Title = title
	}

	dec, err := NewDecorator(m.conn, c.FrameGeometry(m.cfg.Appearance.TitlebarHeight), m.cfg.Appearance.TitlebarHeight, c.Border, m.colorFocused, m.colorUnfocused)
	if err != nil {
		return errors.Wrap(err, "create decorator")
	}
	c.decorator = dec
	c.Frame = dec.Frame()

	if err := m.conn.AddToSaveSet(win); err != nil {
		return errors.Wrap(err, "add to save-set")
	}
	if err := m.conn.Reparent(win, c.Frame, int16(c.Border), int16(c.Border+m.cfg.Appearance.TitlebarHeight)); err != nil {
		return errors.Wrap(err, "reparent into frame")
	}
	if err := m.conn.SelectInput(win, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify); err != nil {
		return errors.Wrap(err, "select client input")
	}
	if err := m.conn.Props.SetWMState(win, NormalState); err != nil {
		m.log.Warn("failed to set WM_STATE for %d: %s", win, err)
	}

	m.clients[win] = c
	m.frames[c.Frame] = c
	m.conn.Demux.OnWindow(c.Frame, m.frameHandler(c))
	m.conn.Demux.OnWindow(win, m.clientHandler(c))
	m.focus.Track(c)

	for _, chord := range m.rootButtons {
		if err := m.conn.GrabButton(c.Frame, chord.Mods, chord.Button); err != nil {
			m.log.Warn("failed to grab button binding %+v on %d: %s", chord, c.Frame, err)
		}
	}
	if m.focus.policy.Name() == "click" {
		if err := m.conn.GrabButtonAnyModifier(c.Frame, xproto.ButtonIndex1); err != nil {
			m.log.Warn("failed to grab click-to-focus button on %d: %s", c.Frame, err)
		}
	}

	if err := m.conn.MapWindow(c.Frame); err != nil {
		return errors.Wrap(err, "map frame")
	}
	if err := m.conn.MapWindow(c.decorator.Titlebar()); err != nil {
		return errors.Wrap(err, "map titlebar")
	}
	if err := m.conn.MapWindow(win); err != nil {
		return errors.Wrap(err, "map client")
	}
	if !adopting {
		return m.focus.HandleMap(c, m.conn.CurrentTime())
	}
	return nil
}

// unmanage reverses manage(): reparent win back to root at its absolute
// geometry (preserving it exactly), drop it from the save-set, forget
// its event chains, and destroy the frame.
func (m *Manager) unmanage(c *Client) error {
	m.conn.Demux.Forget(c.Win)
	m.conn.Demux.Forget(c.Frame)
	delete(m.clients, c.Win)
	delete(m.frames, c.Frame)
	m.focus.Untrack(c)

	if err := m.conn.Reparent(c.Win, m.conn.Root(), int16(c.Geometry.X), int16(c.Geometry.Y)); err != nil {
		return errors.Wrap(err, "reparent back to root")
	}
	if err := m.conn.RemoveFromSaveSet(c.Win); err != nil {
		return errors.Wrap(err, "remove from save-set")
	}
	if c.decorator != nil {
		if err := c.decorator.Destroy(); err != nil {
			return errors.Wrap(err, "destroy decorator")
		}
	}
	return nil
}

// handleMapRequest is the manager's sole MapRequest handler, registered
// on the root via Demux.OnMapRequest.
func (m *Manager) handleMapRequest(ev xproto.MapRequestEvent) {
	if err := m.manage(ev.Window, false); err != nil {
		m.log.Warn("failed to manage %d: %s", ev.Window, err)
	}
}

// handleConfigureRequest honors a client's own geometry request, which by
// ICCCM the manager must either grant or override and notify about —
// never simply ignore (ICCCM §4.1.5).
func (m *Manager) handleConfigureRequest(ev xproto.ConfigureRequestEvent) {
	c, ok := m.clients[ev.Window]
	if !ok {
		// Not yet managed (or an override-redirect window): pass the
		// request through unchanged.
		mask := ev.ValueMask
		values := configureRequestValues(ev)
		_ = xproto.ConfigureWindowChecked(m.conn.XU.Conn(), ev.Window, mask, values).Check()
		return
	}

	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		c.Geometry.Width = uint32(ev.Width)
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		c.Geometry.Height = uint32(ev.Height)
	}
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		c.Geometry.X = int32(ev.X)
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		c.Geometry.Y = int32(ev.Y)
	}
	w, h := ClampSize(c.SizeHints, float64(c.Geometry.Width), float64(c.Geometry.Height))
	c.Geometry.Width, c.Geometry.Height = w, h

	if c.decorator != nil {
		if err := c.decorator.Resize(c.FrameGeometry(m.cfg.Appearance.TitlebarHeight)); err != nil {
			m.log.Warn("failed to resize frame for %d: %s", c.Win, err)
		}
	}
	if err := m.conn.ConfigureWindow(c.Win, c.Geometry, c.Border); err != nil {
		m.log.Warn("failed to configure client %d: %s", c.Win, err)
	}
	if err := m.conn.SendConfigureNotify(c.Win, c.Geometry, c.Border); err != nil {
		m.log.Warn("failed to notify %d of its configured geometry: %s", c.Win, err)
	}
}

func configureRequestValues(ev xproto.ConfigureRequestEvent) []uint32 {
	var values []uint32
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(ev.X))
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(ev.Y))
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if ev.ValueMask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if ev.ValueMask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	return values
}

// frameHandler builds the per-window Handler for c's frame: pointer
// enter for SloppyFocus, button presses for move/resize and
// ClickToFocus.
func (m *Manager) frameHandler(c *Client) x11.Handler {
	return func(ev xgb.Event) bool {
		switch e := ev.(type) {
		case xproto.EnterNotifyEvent:
			if e.Mode != xproto.NotifyModeNormal || e.Detail == xproto.NotifyDetailInferior {
				return true
			}
			if err := m.focus.HandleEnter(c, e.Time); err != nil {
				m.log.Warn("focus on enter failed for %d: %s", c.Win, err)
			}
			return true
		case xproto.ButtonPressEvent:
			replay, err := m.focus.HandleButtonPress(c, e.Time)
			if err != nil {
				m.log.Warn("focus on click failed for %d: %s", c.Win, err)
			}
			mods := x11.Keymod(e.State) &^ x11.ModLock
			result := m.binds.Press(mods, 0, e.Detail)
			if result.Kind == bind.TerminalCallback {
				replay = false
				switch result.Action.Name {
				case "move":
					m.beginMoveResize(c, false, int32(e.RootX), int32(e.RootY), e.Time)
				case "resize":
					m.beginMoveResize(c, true, int32(e.RootX), int32(e.RootY), e.Time)
				default:
					m.dispatchAction(result.Action, mods, e.Time)
				}
			}
			if replay {
				_ = m.conn.AllowEvents(xproto.AllowReplayPointer, e.Time)
			} else {
				_ = m.conn.AllowEvents(xproto.AllowSyncPointer, e.Time)
			}
			return true
		}
		return false
	}
}

// clientHandler builds the per-window Handler for c's own window:
// UnmapNotify/DestroyNotify trigger unmanage and PropertyNotify refreshes
// cached state. ClientMessage events, WM_CHANGE_STATE included, are not
// handled here and fall through.
func (m *Manager) clientHandler(c *Client) x11.Handler {
	return func(ev xgb.Event) bool {
		switch e := ev.(type) {
		case xproto.UnmapNotifyEvent:
			if err := m.unmanage(c); err != nil {
				m.log.Warn("failed to unmanage %d on unmap: %s", c.Win, err)
			}
			if err := m.focus.EnsureFocus(m.visibleUnderTop, m.conn.CurrentTime()); err != nil {
				m.log.Warn("failed to re-establish focus after unmap: %s", err)
			}
			return true
		case xproto.DestroyNotifyEvent:
			if err := m.unmanage(c); err != nil {
				m.log.Warn("failed to unmanage %d on destroy: %s", c.Win, err)
			}
			if err := m.focus.EnsureFocus(m.visibleUnderTop, m.conn.CurrentTime()); err != nil {
				m.log.Warn("failed to re-establish focus after destroy: %s", err)
			}
			return true
		case xproto.PropertyNotifyEvent:
			m.handleClientPropertyNotify(c, e)
			return true
		}
		return false
	}
}

// visibleUnderTop reports whether c is visible under the tagset stack's
// current top, used as EnsureFocus's visibility predicate after an
// unmanage.
func (m *Manager) visibleUnderTop(c *Client) bool {
	e, err := ParseExpr(m.tags.Top())
	if err != nil {
		return true
	}
	var all []*Client
	for _, oc := range m.clients {
		all = append(all, oc)
	}
	return Eval(e, Universe{Clients: all})[c]
}

// handleClientPropertyNotify refreshes the one cached field a changed
// property affects, so the manager never needs a full re-query.
func (m *Manager) handleClientPropertyNotify(c *Client, ev xproto.PropertyNotifyEvent) {
	name, err := m.conn.Atoms.Name(ev.Atom)
	if err != nil {
		return
	}
	switch name {
	case x11.AtomWMNormalHints:
		c.SizeHints = m.conn.Props.GetSizeHints(c.Win)
	case x11.AtomWMHints:
		c.WMHints = m.conn.Props.GetWMHints(c.Win)
	case x11.AtomNetWMName, x11.AtomWMName:
		if title, _, err := m.conn.Props.GetString(c.Win, name); err == nil {
			c.Title = title
			if c.decorator != nil {
				c.decorator.SetTitle(title)
			}
		}
	case x11.AtomDimTags:
		if tags, err := m.conn.Props.GetAtomList(c.Win, x11.AtomDimTags); err == nil {
			c.SetTags(tags)
		}
	}
}
