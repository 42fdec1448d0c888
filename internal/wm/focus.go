package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/x11"
)

// FocusTarget is either a managed client or the root window standing in
// for PointerRoot.
type FocusTarget struct {
	Client *Client // nil means root/PointerRoot
}

func (t FocusTarget) IsRoot() bool { return t.Client == nil }

// FocusPolicy decides how pointer and map events change input focus.
// SloppyFocus and ClickToFocus are alternative implementations injected
// at manager construction time.
type FocusPolicy interface {
	// OnEnter handles EnterNotify on a managed frame.
	OnEnter(c *Client) (shouldFocus bool)
	// OnButtonPress handles a ButtonPress observed via a passive grab on
	// an unfocused client's frame. When it returns true the caller must
	// replay the event with AllowEvents after changing focus.
	OnButtonPress(c *Client) (shouldFocus, shouldReplay bool)
	// Name identifies the policy for config validation and logging.
	Name() string
}

// SloppyFocus focuses whatever the pointer is over.
type SloppyFocus struct{}

func (SloppyFocus) OnEnter(c *Client) bool { return true }

func (SloppyFocus) OnButtonPress(c *Client) (bool, bool) { return false, false }

func (SloppyFocus) Name() string { return "sloppy" }

// ClickToFocus only changes focus on an explicit click.
type ClickToFocus struct{}

func (ClickToFocus) OnEnter(c *Client) bool { return false }

func (ClickToFocus) OnButtonPress(c *Client) (bool, bool) { return true, true }

func (ClickToFocus) Name() string { return "click" }

// NewFocusPolicy constructs the configured policy by name, defaulting to
// SloppyFocus for an unrecognized value.
func NewFocusPolicy(name string) FocusPolicy {
	switch name {
	case "click":
		return ClickToFocus{}
	default:
		return SloppyFocus{}
	}
}

// FocusManager tracks the most-recently-focused ordering (FocusList) and
// drives the SetInputFocus/WM_TAKE_FOCUS protocol dance on every focus
// change.
type FocusManager struct {
	conn   *x11.Conn
	policy FocusPolicy

	newWindows bool // the FocusNewWindows mixin

	list    []*Client // head = most recently focused
	current *Client   // nil means root/PointerRoot
}

// NewFocusManager builds a focus manager around policy. newWindows is the
// FocusNewWindows mixin: whether a newly-mapped window that accepts
// focus is focused immediately.
func NewFocusManager(conn *x11.Conn, policy FocusPolicy, newWindows bool) *FocusManager {
	return &FocusManager{conn: conn, policy: policy, newWindows: newWindows}
}

// Track adds a newly-managed client to the tail of FocusList (least
// recently used, until it's actually focused).
func (fm *FocusManager) Track(c *Client) {
	fm.list = append(fm.list, c)
}

// Untrack removes c from FocusList, called on unmanage.
func (fm *FocusManager) Untrack(c *Client) {
	out := fm.list[:0]
	for _, o := range fm.list {
		if o != c {
			out = append(out, o)
		}
	}
	fm.list = out
	if fm.current == c {
		fm.current = nil
	}
}

// Current returns the currently focused client, or nil for root.
func (fm *FocusManager) Current() *Client { return fm.current }

// HandleEnter implements EnterNotify dispatch per the active policy.
func (fm *FocusManager) HandleEnter(c *Client, t xproto.Timestamp) error {
	if fm.policy.OnEnter(c) {
		return fm.Focus(c, t)
	}
	return nil
}

// HandleRootEnter focuses the root window with PointerRoot semantics,
// without raising anything.
func (fm *FocusManager) HandleRootEnter(t xproto.Timestamp) error {
	return fm.Focus(nil, t)
}

// HandleMap implements the FocusNewWindows mixin: focus a newly mapped
// client if it accepts input focus and the mixin is enabled.
func (fm *FocusManager) HandleMap(c *Client, t xproto.Timestamp) error {
	if !fm.newWindows {
		return nil
	}
	if !c.AcceptsInputFocus() && !c.SupportsTakeFocus() {
		return nil
	}
	return fm.Focus(c, t)
}

// HandleButtonPress implements ClickToFocus's grabbed-button dance: focus
// the client, then tell the caller whether to replay the event. The
// passive button grab on the frame is not released once the client has
// focus.
func (fm *FocusManager) HandleButtonPress(c *Client, t xproto.Timestamp) (replay bool, err error) {
	shouldFocus, shouldReplay := fm.policy.OnButtonPress(c)
	if shouldFocus {
		if err := fm.Focus(c, t); err != nil {
			return false, err
		}
	}
	return shouldReplay, nil
}

// Focus makes target the focused client (nil for root/PointerRoot),
// driving SetInputFocus and/or WM_TAKE_FOCUS, updating decorator focus
// rendering, and moving target to the head of FocusList. Root's
// _NET_ACTIVE_WINDOW is set to target only when target accepts input
// focus or WM_TAKE_FOCUS.
func (fm *FocusManager) Focus(target *Client, t xproto.Timestamp) error {
	prev := fm.current
	if prev == target {
		return nil
	}
	if prev != nil && prev.decorator != nil {
		if err := prev.decorator.Redraw(false); err != nil {
			return err
		}
	}
	fm.current = target
	if target == nil {
		if err := fm.conn.SetInputFocus(0, t); err != nil {
			return err
		}
		return fm.conn.Props.SetNetActiveWindow(0)
	}

	if target.AcceptsInputFocus() {
		if err := fm.conn.SetInputFocus(target.Win, t); err != nil {
			return err
		}
	}
	if target.SupportsTakeFocus() {
		takeFocus := fm.conn.Atoms.MustIntern(x11.AtomWMTakeFocus)
		if err := fm.conn.SendClientMessage(target.Win, takeFocus, uint32(t)); err != nil {
			return err
		}
	}
	if target.decorator != nil {
		if err := target.decorator.Redraw(true); err != nil {
			return err
		}
	}
	if target.AcceptsInputFocus() || target.SupportsTakeFocus() {
		if err := fm.conn.Props.SetNetActiveWindow(target.Win); err != nil {
			return err
		}
	}
	fm.promote(target)
	return nil
}

// promote moves c to the head of FocusList.
func (fm *FocusManager) promote(c *Client) {
	out := make([]*Client, 0, len(fm.list))
	out = append(out, c)
	for _, o := range fm.list {
		if o != c {
			out = append(out, o)
		}
	}
	fm.list = out
}

// EnsureFocus re-establishes a valid focus after a disturbance (unmap,
// unmanage, tagset switch): the head of FocusList that is visible under
// visible, falling back to PointerRoot.
func (fm *FocusManager) EnsureFocus(visible func(*Client) bool, t xproto.Timestamp) error {
	if fm.current != nil && visible(fm.current) {
		return nil
	}
	for _, c := range fm.list {
		if visible(c) {
			return fm.Focus(c, t)
		}
	}
	return fm.Focus(nil, t)
}
