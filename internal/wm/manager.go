// Package wm implements the reparenting window manager core: client
// adoption, decoration, focus policy, the binding engine, interactive
// move/resize and the tagset expression engine.
package wm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/cfg"
	"github.com/dimwm/dimwm/internal/debugconsole"
	"github.com/dimwm/dimwm/internal/log"
	"github.com/dimwm/dimwm/internal/wm/bind"
	"github.com/dimwm/dimwm/internal/x11"
	"github.com/pkg/errors"
)

// Manager is the top-level object: it owns the client table, the focus
// manager, the binding engine and the active modal, and wires X events to
// all of them.
type Manager struct {
	conn *x11.Conn
	cfg  cfg.Config
	log  log.Logger

	clients map[x11.Win]*Client // keyed by the original client window
	frames  map[x11.Win]*Client // keyed by the frame window, for fast event lookup

	focus  *FocusManager
	binds  *bind.Engine
	modal  ModalStack
	cycle  *FocusCycle
	remote *RemoteControl

	tags     TagsetStack
	selfArgv []string

	// mb is the standalone minibuffer used for prompts that aren't tied
	// to any client's titlebar, e.g. the tagset-switch prompt bound to
	// the "tagset-prompt" action.
	mb *minibufferWindow

	// renameClient is set while a client's titlebar is acting as an
	// inline text entry (the "rename" action), nil otherwise. mb and
	// renameClient are never both non-nil: beginning either checks the
	// other is idle first.
	renameClient *Client

	torndown bool // guards teardown against running twice (crash path, then Shutdown)

	colorFocused, colorUnfocused uint32

	// rootChords/rootButtons are the first chord of every configured
	// binding chain, collected while loading the binding tree: the only
	// chords that ever need a standing passive grab.
	rootChords  []bind.Chord
	rootButtons []bind.Chord

	activeMoveResize *MoveResize
}

// New constructs a manager bound to conn, configured by c. selfArgv is
// the argv the manager writes to WM_COMMAND at startup and re-execs on a
// plain restart. logger is built by the caller (cmd/dimwm) via
// log.DefaultLogger, since log.FromName requires a conf file no process
// can have written before its own first logger exists.
func New(conn *x11.Conn, c cfg.Config, selfArgv []string, logger log.Logger) (*Manager, error) {
	m := &Manager{
		conn:     conn,
		cfg:      c,
		log:      logger,
		clients:  make(map[x11.Win]*Client),
		frames:   make(map[x11.Win]*Client),
		selfArgv: selfArgv,
	}
	m.colorFocused = parseColor(c.Appearance.FocusedColor)
	m.colorUnfocused = parseColor(c.Appearance.UnfocusedColor)

	policy := NewFocusPolicy(c.Focus.Policy)
	m.focus = NewFocusManager(conn, policy, c.Focus.NewWindows)
	m.cycle = NewFocusCycle(m.focus, m.raiseClient, m.warpToClient)

	m.binds = bind.New(conn.IgnoredModifiers())
	if err := m.loadBindings(c.Bindings); err != nil {
		return nil, errors.Wrap(err, "load bindings")
	}
	timeout := time.Duration(c.General.PrefixTimeoutMillis) * time.Millisecond
	m.binds.SetTimeout(timeout, m.abortPrefixChain)

	m.tags = *NewTagsetStack()
	if c.General.DefaultTagset != "." {
		if _, err := ParseExpr(c.General.DefaultTagset); err != nil {
			return nil, errors.Wrap(err, "parse default_tagset")
		}
		m.tags.Push(c.General.DefaultTagset)
	}

	m.remote = NewRemoteControl(conn, m.applyTagsetExpr, m.Shutdown)

	mbGeom := x11.Rect{
		X: 0, Y: 0,
		Width:  conn.Screen().Width,
		Height: uint32(c.Appearance.TitlebarHeight),
	}
	mb, err := newMinibufferWindow(conn, mbGeom, m.colorUnfocused)
	if err != nil {
		return nil, errors.Wrap(err, "create tagset-prompt minibuffer window")
	}
	m.mb = mb

	return m, nil
}

// parseColor reads a "#RRGGBB" string into a packed pixel value. This is
// a deliberate simplification: proper color allocation against the
// screen's colormap belongs to a rendering collaborator outside the core,
// so a TrueColor-assuming literal pixel is good enough for border/
// background requests.
func parseColor(s string) uint32 {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

// loadBindings flattens a cfg.BindingMap (whose Entry values may nest
// into prefix chains) into bind.Engine registrations.
func (m *Manager) loadBindings(bm cfg.BindingMap) error {
	return m.loadBindingsChain(nil, bm)
}

func (m *Manager) loadBindingsChain(prefix []bind.Chord, bm cfg.BindingMap) error {
	for b, entry := range bm {
		chord := bind.Chord{Mods: b.Mods, Key: b.Key, Button: b.Button}
		if len(prefix) == 0 {
			if chord.Button != 0 {
				m.rootButtons = append(m.rootButtons, chord)
			} else {
				m.rootChords = append(m.rootChords, chord)
			}
		}
		chain := append(append([]bind.Chord(nil), prefix...), chord)
		switch {
		case entry.Action != nil:
			m.binds.Bind(chain, bind.Action{Name: entry.Action.Name, Arg: entry.Action.Arg})
		case entry.Chain != nil:
			if err := m.loadBindingsChain(chain, entry.Chain); err != nil {
				return err
			}
		default:
			return fmt.Errorf("bind %q has neither an action nor a chain", b.String())
		}
	}
	return nil
}

// supportedNetAtoms is the EWMH _NET_SUPPORTED list this manager actually
// implements; advertising it is what lets EWMH-aware clients and panels
// trust _NET_WM_STATE/_NET_ACTIVE_WINDOW instead of guessing.
var supportedNetAtoms = []string{
	x11.AtomNetWMState, x11.AtomStateFullscreen, x11.AtomStateMaxHorz,
	x11.AtomStateMaxVert, x11.AtomStateAbove, x11.AtomNetActiveWindow,
	x11.AtomNetWMName, x11.AtomNetSupported,
}

// Startup performs the manager's startup sequence: claim
// SubstructureRedirect on the root (failing fast if another WM already
// holds it), query RandR, and adopt every already-mapped, non-
// override-redirect child of root.
func (m *Manager) Startup() error {
	if err := m.conn.BecomeWM(); err != nil {
		return err
	}
	if err := m.conn.Props.SetNetSupported(supportedNetAtoms); err != nil {
		m.log.Warn("failed to advertise _NET_SUPPORTED: %s", err)
	}
	if err := m.conn.Props.SetCommand(m.conn.Root(), m.selfArgv); err != nil {
		m.log.Warn("failed to seed WM_COMMAND: %s", err)
	}
	if m.conn.HasRandR() {
		if err := m.conn.WatchOutputChanges(); err != nil {
			m.log.Warn("failed to subscribe to RandR output changes: %s", err)
		}
	}

	m.conn.Demux.SetFallback(func(xgb.Event) bool { return false })
	m.conn.Demux.OnMapRequest(m.handleMapRequest)
	m.conn.Demux.OnConfigureRequest(m.handleConfigureRequest)
	m.conn.Demux.OnWindow(m.conn.Root(), m.rootHandler())

	for _, chord := range m.rootChords {
		if err := m.conn.GrabKey(chord.Mods, chord.Key); err != nil {
			m.log.Warn("failed to grab key binding %+v: %s", chord, err)
		}
	}

	children, err := m.queryExistingClients()
	if err != nil {
		return errors.Wrap(err, "query existing clients")
	}
	for _, win := range children {
		if err := m.manage(win, true); err != nil {
			m.log.Warn("failed to adopt window %d: %s", win, err)
		}
	}
	return nil
}

// abortPrefixChain is the binding engine's timeout callback: it fires on
// the timer's own goroutine after a prefix chain goes quiet, releasing the
// keyboard grab handleKeyPress took to keep navigating it. xproto.CurrentTime
// is used rather than m.conn.CurrentTime(), since this runs off the event
// loop's goroutine and has no safe way to read its last-observed timestamp.
func (m *Manager) abortPrefixChain() {
	if err := m.conn.UngrabKeyboard(xproto.CurrentTime); err != nil {
		m.log.Warn("failed to ungrab keyboard after prefix timeout: %s", err)
	}
}

// queryExistingClients enumerates root's children via QueryTree, keeping
// only mapped, non-override-redirect windows.
func (m *Manager) queryExistingClients() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(m.conn.XU.Conn(), m.conn.Root()).Reply()
	if err != nil {
		return nil, err
	}
	var out []xproto.Window
	for _, win := range tree.Children {
		attr, err := xproto.GetWindowAttributes(m.conn.XU.Conn(), win).Reply()
		if err != nil || attr == nil {
			continue
		}
		if attr.OverrideRedirect || attr.MapState != xproto.MapStateViewable {
			continue
		}
		out = append(out, win)
	}
	return out, nil
}

// Run drives the event loop until ctx is cancelled. An uncaught panic
// anywhere in the dispatch chain is recovered here instead of crashing
// the process with a raw stack trace and orphaned framed clients.
func (m *Manager) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = m.recoverFromPanic(r)
		}
	}()
	return m.conn.Serve(ctx)
}

// recoverFromPanic implements the crash-handoff path: snapshot the
// client table, tear down exactly as a graceful Shutdown would (minus
// the exec), then hand off to the post-mortem console. It must be safe
// to reach from a half-initialized manager, since the panic may have
// come from anywhere in Startup or the dispatch chain.
func (m *Manager) recoverFromPanic(r any) error {
	cause := fmt.Errorf("panic in event loop: %v", r)
	m.log.Error("%s", cause)
	snap := m.snapshot()
	m.teardown()
	if err := debugconsole.Run(cause, snap, m.log.RecentLines(256)); err != nil {
		m.log.Warn("post-mortem console failed: %s", err)
	}
	return cause
}

// raiseClient and warpToClient back FocusCycle's in-cycle operations.
func (m *Manager) raiseClient(c *Client) error {
	return m.conn.Restack(c.Frame, true)
}

func (m *Manager) warpToClient(c *Client) error {
	return m.conn.WarpPointer(c.Frame, int16(c.Geometry.Width/2), int16(c.Geometry.Height/2))
}

// applyTagsetExpr parses expr and switches to it. Used both as
// RemoteControl's callback and by the "tagset" bound action.
func (m *Manager) applyTagsetExpr(expr string) error {
	return m.SwitchTagset(expr)
}

// SwitchTagset parses exprStr, evaluates it against every managed
// client, maps/unmaps frames accordingly, replaces the stack's top, and
// re-establishes focus. A parse failure leaves the active
// tagset unchanged.
func (m *Manager) SwitchTagset(exprStr string) error {
	e, err := ParseExpr(exprStr)
	if err != nil {
		return errors.Wrapf(err, "parse tagset expression %q", exprStr)
	}

	universe := Universe{Current: m.currentVisible()}
	for _, c := range m.clients {
		universe.Clients = append(universe.Clients, c)
	}
	visible := Eval(e, universe)

	for _, c := range m.clients {
		if visible[c] {
			if err := m.conn.MapWindow(c.Frame); err != nil {
				return err
			}
		} else {
			if err := m.conn.UnmapWindow(c.Frame); err != nil {
				return err
			}
		}
	}
	m.tags.Push(exprStr)
	return m.focus.EnsureFocus(func(c *Client) bool { return visible[c] }, m.conn.CurrentTime())
}

// currentVisible returns the client set visible under the stack's current
// top, used to resolve the `.` atom when evaluating a new expression.
func (m *Manager) currentVisible() map[*Client]bool {
	top := m.tags.Top()
	e, err := ParseExpr(top)
	if err != nil {
		return nil
	}
	var all []*Client
	for _, c := range m.clients {
		all = append(all, c)
	}
	return Eval(e, Universe{Clients: all})
}

// Shutdown implements the manager's teardown sequence: unmanage every
// client (reparenting it back to root at its absolute geometry and
// removing it from the save-set), flush and disconnect. A non-empty cmd is
// then exec'd in place of the manager; with an empty cmd Shutdown returns
// nil once disconnected.
func (m *Manager) Shutdown(cmd []string, t xproto.Timestamp) error {
	m.teardown()

	if len(cmd) > 0 {
		return ExecReplace(cmd, nil)
	}
	return nil
}

// teardown unmanages every client (reparenting each back to root at its
// absolute geometry, removing it from the save-set) and closes the
// connection. It never execs, so it is also the path the crash-handoff
// in Run uses. The torndown guard makes it safe to call more than
// once — e.g. once from a panic recovery and again from the Shutdown a
// caller still issues afterward — and safe to call from a
// half-initialized manager.
func (m *Manager) teardown() {
	if m.torndown {
		return
	}
	m.torndown = true
	for win, c := range m.clients {
		if err := m.unmanage(c); err != nil {
			m.log.Warn("failed to unmanage %d during shutdown: %s", win, err)
		}
	}
	m.conn.Flush()
	m.conn.Close()
}

// snapshot captures a display-only view of every currently managed
// client, for handoff to the post-mortem console. Call before teardown:
// unmanage empties the client table as it runs.
func (m *Manager) snapshot() []debugconsole.ClientSnapshot {
	out := make([]debugconsole.ClientSnapshot, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, debugconsole.ClientSnapshot{
			Window: uint32(c.Win),
			Frame:  uint32(c.Frame),
			Title:  c.Title,
			Class:  c.Class,
			Tags:   c.TagList(),
		})
	}
	return out
}
