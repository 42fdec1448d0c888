package wm

import (
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/wm/bind"
	"github.com/dimwm/dimwm/internal/x11"
)

// rootHandler answers events delivered to the root window: KeyPress and
// KeyRelease from the passive grabs placed in Startup, EnterNotify for
// SloppyFocus over bare desktop, and MotionNotify/ButtonRelease for an
// interactive move/resize in progress (both reported against the root
// since GrabPointer grabs over it).
func (m *Manager) rootHandler() x11.Handler {
	return func(ev xgb.Event) bool {
		switch e := ev.(type) {
		case xproto.KeyPressEvent:
			m.handleKeyPress(e.State, e.Detail, e.Time)
			return true
		case xproto.KeyReleaseEvent:
			m.handleKeyRelease(e.State, e.Time)
			return true
		case xproto.EnterNotifyEvent:
			if e.Mode == xproto.NotifyModeNormal && e.Detail != xproto.NotifyDetailInferior {
				_ = m.focus.HandleRootEnter(e.Time)
			}
			return true
		case xproto.MotionNotifyEvent:
			if m.activeMoveResize != nil {
				if err := m.activeMoveResize.Motion(int32(e.RootX), int32(e.RootY)); err != nil {
					m.log.Warn("move/resize motion failed: %s", err)
				}
			}
			return true
		case xproto.ButtonReleaseEvent:
			if m.activeMoveResize != nil {
				m.endMoveResize(e.Time, true)
			}
			return true
		}
		return false
	}
}

// handleKeyPress routes a grabbed keypress through the chord engine and
// dispatches whatever terminal action it resolves to, if any. Entering or
// staying in a prefix chain requires the rest of the keyboard be grabbed
// so following keys aren't stolen by the focused client.
func (m *Manager) handleKeyPress(state uint16, detail xproto.Keycode, t xproto.Timestamp) {
	mods := x11.Keymod(state) &^ x11.ModLock
	if buf := m.activeEntry(); buf != nil {
		m.feedEntry(buf, mods, detail, t)
		return
	}
	result := m.binds.Press(mods, detail, 0)
	switch result.Kind {
	case bind.IntermediatePrefix:
		if err := m.conn.GrabKeyboard(t); err != nil {
			m.log.Warn("failed to grab keyboard for prefix chain: %s", err)
		}
	case bind.TerminalCallback:
		if !m.binds.Active() {
			_ = m.conn.UngrabKeyboard(t)
		}
		m.dispatchAction(result.Action, mods, t)
	case bind.NoMatch:
		_ = m.conn.UngrabKeyboard(t)
	}
}

// handleKeyRelease feeds the focus-cycle state machine its one
// non-chord-driven input: detecting when every cycle modifier has been
// released commits the cycle.
func (m *Manager) handleKeyRelease(state uint16, t xproto.Timestamp) {
	if !m.cycle.Active() {
		return
	}
	remaining := x11.Keymod(state) &^ x11.ModLock
	err := m.cycle.HandleKeyRelease(remaining, t)
	if !m.cycle.Active() {
		m.modal.Pop()
	}
	if err != nil {
		m.log.Warn("focus cycle commit failed: %s", err)
	}
}

// dispatchAction is the single point translating a bound Action into
// manager behavior. Unrecognized action names are
// logged and otherwise ignored, so a typo in a user's config never wedges
// the binding engine.
func (m *Manager) dispatchAction(a bind.Action, mods x11.Keymod, t xproto.Timestamp) {
	switch a.Name {
	case "spawn":
		if err := Spawn(a.Arg); err != nil {
			m.log.Warn("spawn %q failed: %s", a.Arg, err)
		}
	case "exec":
		if err := SpawnArgv(strings.Fields(a.Arg)); err != nil {
			m.log.Warn("exec %q failed: %s", a.Arg, err)
		}
	case "tagset":
		if err := m.applyTagsetExpr(a.Arg); err != nil {
			m.log.Warn("tagset %q failed: %s", a.Arg, err)
		}
	case "tagset-prompt":
		m.beginTagsetPrompt(t)
	case "rename":
		m.beginRenamePrompt(t)
	case "close":
		m.closeFocused(t)
	case "fullscreen":
		m.toggleFullscreen()
	case "focus-cycle-next":
		m.beginOrAdvanceCycle(mods, true)
	case "focus-cycle-prev":
		m.beginOrAdvanceCycle(mods, false)
	case "exit":
		if err := m.Shutdown(nil, t); err != nil {
			m.log.Warn("shutdown failed: %s", err)
		}
	case "restart":
		if err := m.Shutdown(m.selfArgv, t); err != nil {
			m.log.Warn("restart failed: %s", err)
		}
	default:
		m.log.Warn("no such action %q", a.Name)
	}
}

// closeFocused asks the focused client to close itself through
// WM_DELETE_WINDOW when it supports the protocol, falling back to
// DestroyWindow for clients that never adopted it.
func (m *Manager) closeFocused(t xproto.Timestamp) {
	c := m.focus.Current()
	if c == nil {
		return
	}
	if c.SupportsDeleteWindow() {
		atom := m.conn.Atoms.MustIntern(x11.AtomWMDeleteWindow)
		if err := m.conn.SendClientMessage(c.Win, atom, uint32(t)); err != nil {
			m.log.Warn("failed to send WM_DELETE_WINDOW to %d: %s", c.Win, err)
		}
		return
	}
	if err := m.conn.DestroyWindow(c.Win); err != nil {
		m.log.Warn("failed to destroy unresponsive client %d: %s", c.Win, err)
	}
}

// beginTagsetPrompt opens the standalone minibuffer seeded with the
// current tagset expression, committing via applyTagsetExpr on Return and
// discarding the edit on Escape. Only one text entry (standalone or a
// titlebar rename) may be open at a time, so a request while one is
// already active is a no-op.
func (m *Manager) beginTagsetPrompt(t xproto.Timestamp) {
	if m.mb.Active() || m.renameClient != nil {
		return
	}
	err := m.mb.Open("tagset: ", m.tags.Top(), func(expr string) {
		if err := m.applyTagsetExpr(expr); err != nil {
			m.log.Warn("tagset prompt %q failed: %s", expr, err)
		}
	}, func(string) {}, t)
	if err != nil {
		m.log.Warn("failed to open tagset prompt: %s", err)
	}
}

// beginRenamePrompt turns the focused client's titlebar into an inline
// text entry seeded with its current title, committing the user-set label
// on Return and leaving the title untouched on Escape. It grabs the
// keyboard itself since, unlike the standalone minibuffer, a titlebar
// entry owns no window of its own to grab through.
func (m *Manager) beginRenamePrompt(t xproto.Timestamp) {
	c := m.focus.Current()
	if c == nil || c.decorator == nil || m.mb.Active() || m.renameClient != nil {
		return
	}
	if err := m.conn.GrabKeyboard(t); err != nil {
		m.log.Warn("failed to grab keyboard for rename prompt: %s", err)
		return
	}
	m.renameClient = c
	c.decorator.BeginTextEntry("rename: ", c.decorator.Title(), func(title string) {
		c.decorator.SetTitle(title)
	}, func(string) {}, uint32(t))
}

// activeEntry returns the line-editing state of whichever text entry
// currently owns the keyboard grab: the standalone minibuffer, a client's
// titlebar rename, or nil if neither is active.
func (m *Manager) activeEntry() *Minibuffer {
	if m.mb.Active() {
		return m.mb.Buffer()
	}
	if m.renameClient != nil && m.renameClient.decorator != nil {
		return m.renameClient.decorator.Entry()
	}
	return nil
}

// feedEntry routes a grabbed keypress into buf's line-editing state
// instead of the binding engine, while a prompt holds the keyboard grab.
func (m *Manager) feedEntry(buf *Minibuffer, mods x11.Keymod, detail xproto.Keycode, t xproto.Timestamp) {
	switch detail {
	case x11.Keycodes["return"]:
		buf.Commit()
		m.endActiveEntry(t)
		return
	case x11.Keycodes["escape"]:
		buf.Rollback()
		m.endActiveEntry(t)
		return
	case x11.Keycodes["backspace"]:
		buf.DeleteChar()
		return
	case x11.Keycodes["left"]:
		buf.MoveLeft()
		return
	case x11.Keycodes["right"]:
		buf.MoveRight()
		return
	case x11.Keycodes["home"]:
		buf.Home()
		return
	case x11.Keycodes["end"]:
		buf.End()
		return
	case x11.Keycodes["w"]:
		if mods&x11.ModCtrl != 0 {
			buf.DeleteWord()
			return
		}
	}
	if r, ok := x11.KeycodeToRune(detail, mods&x11.ModShift != 0); ok {
		buf.Insert(string(r))
	}
}

// endActiveEntry ungrabs the keyboard and tears down whichever entry is
// active, called once its edit session has committed or rolled back.
func (m *Manager) endActiveEntry(t xproto.Timestamp) {
	if m.mb.Active() {
		if err := m.mb.Close(t); err != nil {
			m.log.Warn("failed to close tagset prompt: %s", err)
		}
		return
	}
	c := m.renameClient
	if c == nil {
		return
	}
	m.renameClient = nil
	if c.decorator != nil {
		c.decorator.EndTextEntry()
	}
	if err := m.conn.UngrabKeyboard(t); err != nil {
		m.log.Warn("failed to ungrab keyboard after rename prompt: %s", err)
	}
}

// netStateNames flattens c's NetState flags into the atom name list
// SetNetWMState expects.
func netStateNames(s NetState) []string {
	var names []string
	if s.Fullscreen {
		names = append(names, x11.AtomStateFullscreen)
	}
	if s.MaxHorz {
		names = append(names, x11.AtomStateMaxHorz)
	}
	if s.MaxVert {
		names = append(names, x11.AtomStateMaxVert)
	}
	if s.Above {
		names = append(names, x11.AtomStateAbove)
	}
	return names
}

// toggleFullscreen flips _NET_WM_STATE_FULLSCREEN for the focused client,
// resizing it to its output's full geometry and hiding its titlebar, or
// restoring LastGeometry on the way back down.
func (m *Manager) toggleFullscreen() {
	c := m.focus.Current()
	if c == nil {
		return
	}
	titlebarHeight := m.cfg.Appearance.TitlebarHeight
	border := c.Border
	if c.NetState.Fullscreen {
		c.NetState.Fullscreen = false
		c.Geometry = c.LastGeometry
		_ = m.conn.MapWindow(c.decorator.Titlebar())
	} else {
		c.NetState.Fullscreen = true
		c.LastGeometry = c.Geometry
		c.Geometry = m.outputGeometryFor(c)
		_ = m.conn.UnmapWindow(c.decorator.Titlebar())
		titlebarHeight = 0
		border = 0
	}
	if c.decorator != nil {
		if err := c.decorator.Resize(c.FrameGeometry(titlebarHeight)); err != nil {
			m.log.Warn("failed to resize frame for fullscreen toggle: %s", err)
		}
	}
	if err := m.conn.ConfigureWindow(c.Win, c.Geometry, border); err != nil {
		m.log.Warn("failed to configure fullscreen client: %s", err)
	}
	_ = m.conn.SendConfigureNotify(c.Win, c.Geometry, border)
	if err := m.conn.Props.SetNetWMState(c.Win, netStateNames(c.NetState)); err != nil {
		m.log.Warn("failed to update _NET_WM_STATE: %s", err)
	}
}

// outputGeometryFor resolves the CRTC rectangle c currently overlaps most, falling back to the whole screen when RandR isn't
// available or nothing overlaps.
func (m *Manager) outputGeometryFor(c *Client) x11.Rect {
	if !m.conn.HasRandR() {
		return m.conn.Screen()
	}
	outputs, err := m.conn.Outputs()
	if err != nil || len(outputs) == 0 {
		return m.conn.Screen()
	}
	best := m.conn.Screen()
	bestArea := int64(0)
	for _, o := range outputs {
		area := overlapArea(c.Geometry, o.Rect)
		if area > bestArea {
			bestArea = area
			best = o.Rect
		}
	}
	return best
}

func overlapArea(a, b x11.Rect) int64 {
	x1 := max32(a.X, b.X)
	y1 := max32(a.Y, b.Y)
	x2 := min32(a.X+int32(a.Width), b.X+int32(b.Width))
	y2 := min32(a.Y+int32(a.Height), b.Y+int32(b.Height))
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	return int64(x2-x1) * int64(y2-y1)
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// beginOrAdvanceCycle starts an alt-tab-style focus cycle over the
// clients visible under the current tagset, or advances an already-active
// one.
func (m *Manager) beginOrAdvanceCycle(mods x11.Keymod, forward bool) {
	if !m.cycle.Active() {
		var candidates []*Client
		visible := m.currentVisible()
		for _, c := range m.focus.list {
			if visible == nil || visible[c] {
				candidates = append(candidates, c)
			}
		}
		m.cycle.Begin(candidates, mods)
		m.modal.Push(m.cycle)
	}
	if forward {
		m.cycle.Next()
	} else {
		m.cycle.Prev()
	}
	if err := m.cycle.Raise(); err != nil {
		m.log.Warn("focus cycle raise failed: %s", err)
	}
	if err := m.cycle.Warp(); err != nil {
		m.log.Warn("focus cycle warp failed: %s", err)
	}
}

// beginMoveResize starts an interactive move or resize of c, grabbing the
// pointer for the duration. px/py are the button press's
// root-relative coordinates.
func (m *Manager) beginMoveResize(c *Client, resize bool, px, py int32, t xproto.Timestamp) {
	if m.activeMoveResize != nil {
		return
	}
	var others []x11.Rect
	for _, oc := range m.clients {
		if oc != c {
			others = append(others, oc.Geometry)
		}
	}
	outputs, _ := m.conn.Outputs()
	threshold := int32(m.cfg.MoveResize.SnapThreshold)
	if threshold == 0 {
		threshold = DefaultSnapThreshold
	}
	var mr *MoveResize
	if resize {
		mr = BeginResize(m.conn, c, px, py, threshold, m.conn.Screen(), outputs, others, nil, nil)
	} else {
		mr = BeginMove(m.conn, c, px, py, threshold, m.conn.Screen(), outputs, others, nil, nil)
	}
	if err := m.conn.GrabPointer(mr.grabCursor(), t); err != nil {
		m.log.Warn("failed to grab pointer for move/resize: %s", err)
		return
	}
	m.activeMoveResize = mr
	m.modal.Push(m.activeMoveResize)
}

// endMoveResize finishes the active interactive operation, committing the
// new geometry or restoring the original one if abort is requested.
func (m *Manager) endMoveResize(t xproto.Timestamp, commit bool) {
	mr := m.activeMoveResize
	if mr == nil {
		return
	}
	m.activeMoveResize = nil
	m.modal.Pop()
	_ = m.conn.UngrabPointer(t)
	if commit {
		if err := mr.Commit(); err != nil {
			m.log.Warn("move/resize commit failed: %s", err)
		}
	} else {
		if err := mr.Abort(); err != nil {
			m.log.Warn("move/resize abort failed: %s", err)
		}
	}
}
