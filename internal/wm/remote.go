package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/x11"
	"github.com/pkg/errors"
)

// RemoteControl implements the manager side of the remote-control
// contract: a second process writes _DIM_TAGSET_EXPRESSION or WM_COMMAND
// on the root and signals the manager with a client message, which the
// event dispatcher routes here.
type RemoteControl struct {
	conn *x11.Conn

	applyTagset func(expr string) error
	shutdown    func(cmd []string, t xproto.Timestamp) error

	// getCommand reads the argv currently seeded in WM_COMMAND. Indirected
	// through a field (rather than calling conn.Props.GetCommand directly)
	// so handleExit's dispatch logic can be exercised without a live X
	// connection.
	getCommand func() []string
}

// NewRemoteControl wires the handlers the manager supplies: applyTagset
// parses and switches the active tagset, shutdown begins the graceful
// teardown-then-exec sequence.
func NewRemoteControl(conn *x11.Conn, applyTagset func(string) error, shutdown func([]string, xproto.Timestamp) error) *RemoteControl {
	rc := &RemoteControl{conn: conn, applyTagset: applyTagset, shutdown: shutdown}
	rc.getCommand = func() []string { return conn.Props.GetCommand(conn.Root()) }
	return rc
}

// HandleClientMessage dispatches a ClientMessage against the two private
// protocols the core understands. Anything else (WM_PROTOCOLS replies
// bouncing back, etc.) is the caller's concern, not this one's.
func (rc *RemoteControl) HandleClientMessage(ev xproto.ClientMessageEvent) error {
	switch ev.Type {
	case rc.conn.Atoms.MustIntern(x11.AtomDimTagsetUpdate):
		return rc.handleTagsetUpdate()
	case rc.conn.Atoms.MustIntern(x11.AtomDimExit):
		return rc.handleExit(ev)
	}
	return nil
}

// handleTagsetUpdate reads _DIM_TAGSET_EXPRESSION off the root and applies
// it. A parse failure is surfaced as a warning by the caller (via the
// returned error); the active tagset is left unchanged.
func (rc *RemoteControl) handleTagsetUpdate() error {
	expr, _, err := rc.conn.Props.GetString(rc.conn.Root(), x11.AtomDimTagsetExpr)
	if err != nil {
		return errors.Wrap(err, "read _DIM_TAGSET_EXPRESSION")
	}
	if rc.applyTagset == nil {
		return nil
	}
	return rc.applyTagset(expr)
}

// handleExit decodes the _DIM_WM_EXIT client message: data0 is the
// timestamp to use for the final teardown. WM_COMMAND on the root always
// names what to exec once torn down — --exit leaves it as the self argv
// seeded at startup, --restart re-seeds the same argv to pick up a fresh
// timestamp, and --exec replaces it outright, so shutdown always execs
// whatever WM_COMMAND currently holds.
func (rc *RemoteControl) handleExit(ev xproto.ClientMessageEvent) error {
	data := ev.Data.Data32
	var t xproto.Timestamp
	if len(data) > 0 {
		t = xproto.Timestamp(data[0])
	}
	if rc.shutdown == nil {
		return nil
	}
	var cmd []string
	if rc.getCommand != nil {
		cmd = rc.getCommand()
	}
	return rc.shutdown(cmd, t)
}

// SendTagsetUpdate implements the `--tagset SPEC` CLI verb: a second
// process writes expr to _DIM_TAGSET_EXPRESSION on the root and signals
// the manager with _DIM_TAGSET_UPDATE.
func SendTagsetUpdate(conn *x11.Conn, expr string) error {
	if err := conn.Props.SetString(conn.Root(), x11.AtomDimTagsetExpr, expr); err != nil {
		return errors.Wrap(err, "write _DIM_TAGSET_EXPRESSION")
	}
	conn.Flush()
	atom := conn.Atoms.MustIntern(x11.AtomDimTagsetUpdate)
	return conn.SendTypedClientMessage(conn.Root(), atom, 0, 0)
}

// SendExit implements `--exit`: signal _DIM_WM_EXIT with CurrentTime,
// leaving WM_COMMAND as whatever argv the manager already seeded it with
// at startup.
func SendExit(conn *x11.Conn) error {
	atom := conn.Atoms.MustIntern(x11.AtomDimExit)
	return conn.SendTypedClientMessage(conn.Root(), atom, uint32(conn.CurrentTime()), 0)
}

// SendRestart implements `--restart`: re-write WM_COMMAND with its own
// current value, producing a fresh PropertyNotify on root, then signal
// exit with that notification's own timestamp so the manager re-execs the
// argv it was originally launched with, not the restart client's own argv.
// The timestamp can't come from conn.CurrentTime: this is a brand-new
// connection that has processed zero events, so CurrentTime is still
// X11's CurrentTime=0, not a proxy for "now". Selecting PropertyChange on
// root and waiting for the notification this write provokes is the only
// way this short-lived connection ever observes a real timestamp.
func SendRestart(conn *x11.Conn) error {
	if err := conn.SelectPropertyChange(conn.Root()); err != nil {
		return errors.Wrap(err, "select PropertyChange on root")
	}
	wmCommand := conn.Atoms.MustIntern(x11.AtomWMCommand)
	current := conn.Props.GetCommand(conn.Root())
	if err := conn.Props.SetCommand(conn.Root(), current); err != nil {
		return errors.Wrap(err, "touch WM_COMMAND for restart")
	}
	conn.Flush()
	t, err := conn.WaitForPropertyNotify(conn.Root(), wmCommand)
	if err != nil {
		return errors.Wrap(err, "wait for WM_COMMAND PropertyNotify")
	}
	atom := conn.Atoms.MustIntern(x11.AtomDimExit)
	return conn.SendTypedClientMessage(conn.Root(), atom, uint32(t), 0)
}

// SendExec implements `--exec ARGV`: replace WM_COMMAND with argv, then
// signal exit — the manager always execs whatever WM_COMMAND holds once
// torn down, so overwriting it here is sufficient.
func SendExec(conn *x11.Conn, argv []string) error {
	if err := conn.Props.SetCommand(conn.Root(), argv); err != nil {
		return errors.Wrap(err, "write WM_COMMAND for exec")
	}
	conn.Flush()
	atom := conn.Atoms.MustIntern(x11.AtomDimExit)
	return conn.SendTypedClientMessage(conn.Root(), atom, uint32(conn.CurrentTime()), 0)
}
