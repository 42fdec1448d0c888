package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/x11"
)

// FocusCycle is the modal focus-cycle subsystem: a chord
// whose held modifiers define the "cycle modifier set" opens it; release
// of the last of those modifier keys commits the highlighted candidate as
// focus. It runs its own tiny state machine against raw key events rather
// than through bind.Engine, since it must watch for a key *release* event
// that never appears in any binding chain.
type FocusCycle struct {
	fm *FocusManager

	active     bool
	cycleMods  x11.Keymod
	candidates []*Client
	index      int

	raise func(*Client) error
	warp  func(*Client) error
}

// NewFocusCycle wires a cycle against fm, with raise/warp hooks supplied
// by the manager (the cycle itself only tracks selection state).
func NewFocusCycle(fm *FocusManager, raise, warp func(*Client) error) *FocusCycle {
	return &FocusCycle{fm: fm, raise: raise, warp: warp}
}

// Begin starts a cycle with candidates in stacking/FocusList order and
// cycleMods recording which modifier keys must all be released to commit.
// A request while already active is a no-op.
func (fc *FocusCycle) Begin(candidates []*Client, cycleMods x11.Keymod) {
	if fc.active || len(candidates) == 0 {
		return
	}
	fc.active = true
	fc.cycleMods = cycleMods
	fc.candidates = candidates
	fc.index = 0
}

// Active reports whether a cycle is currently open.
func (fc *FocusCycle) Active() bool { return fc.active }

// Name identifies the cycle as a Modal on the manager's modal stack.
func (fc *FocusCycle) Name() string { return "focus-cycle" }

// Current returns the currently highlighted candidate.
func (fc *FocusCycle) Current() *Client {
	if !fc.active || len(fc.candidates) == 0 {
		return nil
	}
	return fc.candidates[fc.index]
}

// Next/Prev rotate the highlighted candidate without changing focus yet.
func (fc *FocusCycle) Next() {
	if !fc.active || len(fc.candidates) == 0 {
		return
	}
	fc.index = (fc.index + 1) % len(fc.candidates)
}

func (fc *FocusCycle) Prev() {
	if !fc.active || len(fc.candidates) == 0 {
		return
	}
	fc.index = (fc.index - 1 + len(fc.candidates)) % len(fc.candidates)
}

// Raise raises the currently highlighted candidate without committing
// focus, one of the in-cycle operations the binding map exposes.
func (fc *FocusCycle) Raise() error {
	if c := fc.Current(); c != nil && fc.raise != nil {
		return fc.raise(c)
	}
	return nil
}

// Warp moves the pointer onto the currently highlighted candidate.
func (fc *FocusCycle) Warp() error {
	if c := fc.Current(); c != nil && fc.warp != nil {
		return fc.warp(c)
	}
	return nil
}

// Abort closes the cycle without changing focus.
func (fc *FocusCycle) Abort() {
	fc.active = false
	fc.candidates = nil
}

// HandleKeyRelease inspects a KeyRelease event's remaining modifier state
// to decide whether the cycle should commit. It must be fed every
// KeyRelease while the cycle is active, independent of bind.Engine
// dispatch.
//
// remainingMods is the modifier state *after* this release is applied; if
// none of cycleMods' bits remain set, the held chord has been fully
// released and the cycle commits.
func (fc *FocusCycle) HandleKeyRelease(remainingMods x11.Keymod, t xproto.Timestamp) error {
	if !fc.active {
		return nil
	}
	if remainingMods&fc.cycleMods != 0 {
		return nil
	}
	target := fc.Current()
	fc.active = false
	fc.candidates = nil
	if target == nil {
		return nil
	}
	return fc.fm.Focus(target, t)
}
