// Package bind implements the key/button chord matching engine described
// in a binding map keyed by (modifier mask, detail) whose
// terminal values are either a callback or a nested map (a prefix chain).
package bind

import (
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/x11"
)

// Chord identifies a single keypress or button click: a modifier mask
// plus exactly one of a key or a button.
type Chord struct {
	Mods   x11.Keymod
	Key    xproto.Keycode
	Button xproto.Button
}

// Action is the payload attached to a terminal chord.
type Action struct {
	Name string
	Arg  string
}

// ResultKind classifies the outcome of Engine.Press.
type ResultKind int

const (
	NoMatch ResultKind = iota
	IntermediatePrefix
	TerminalCallback
)

// Result is returned by Engine.Press.
type Result struct {
	Kind   ResultKind
	Action Action
}

type node struct {
	children map[Chord]*node
	action   *Action
}

// Engine matches chords against a binding tree, tracking an active prefix
// chain across presses.
type Engine struct {
	root        *node
	ignoredMods x11.Keymod

	mu      sync.Mutex
	active  *node
	timeout time.Duration
	timer   *time.Timer

	// onTimeout is invoked (from the timer's own goroutine) when a prefix
	// chain is abandoned by the clock rather than by a keypress, so the
	// caller can release whatever it grabbed to keep navigating the chain
	// (the keyboard, typically). Press and Abort never call it directly.
	onTimeout func()
}

// New builds an empty engine. ignoredMods is masked out of the modifiers
// of every bound chord and every incoming chord before matching (Lock and
// NumLock's Mod bit — see Conn.IgnoredModifiers).
func New(ignoredMods x11.Keymod) *Engine {
	return &Engine{
		root:        &node{children: make(map[Chord]*node)},
		ignoredMods: ignoredMods,
	}
}

// SetTimeout configures the prefix-chain timeout: d is how long the engine
// waits for the next chord after entering an IntermediatePrefix state
// before aborting on its own; onTimeout runs when that happens. d <= 0
// disables the timeout (a chain then only ends on a matching or
// non-matching keypress).
func (e *Engine) SetTimeout(d time.Duration, onTimeout func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
	e.onTimeout = onTimeout
}

// armTimeout schedules (or reschedules) the prefix timeout. Must be called
// with e.mu held.
func (e *Engine) armTimeout() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.timeout <= 0 {
		return
	}
	e.timer = time.AfterFunc(e.timeout, func() {
		e.mu.Lock()
		e.active = nil
		e.timer = nil
		cb := e.onTimeout
		e.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}

// disarmTimeout cancels any pending prefix timeout. Must be called with
// e.mu held.
func (e *Engine) disarmTimeout() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Bind registers action as the terminal value for the chord path chain
// (a single chord for a non-prefixed binding, multiple for a prefix
// chain).
func (e *Engine) Bind(chain []Chord, action Action) {
	cur := e.root
	for _, c := range chain {
		c = e.normalize(c)
		next, ok := cur.children[c]
		if !ok {
			next = &node{children: make(map[Chord]*node)}
			cur.children[c] = next
		}
		cur = next
	}
	a := action
	cur.action = &a
}

// normalize masks out ignored modifiers; keypad aliases are handled by
// resolve.
func (e *Engine) normalize(c Chord) Chord {
	c.Mods &^= e.ignoredMods
	return c
}

// resolve looks up c directly, then (if it names a key) via its keypad
// alias: a binding on the main-row key also matches the keypad equivalent
// when there's no binding for the raw symbol pressed.
func (cur *node) resolve(c Chord) (*node, bool) {
	if next, ok := cur.children[c]; ok {
		return next, true
	}
	if c.Key != 0 {
		if alias, ok := x11.KeypadAliases[c.Key]; ok {
			aliased := c
			aliased.Key = alias
			if next, ok := cur.children[aliased]; ok {
				return next, true
			}
		}
	}
	return nil, false
}

// Press feeds one chord into the engine and returns the match outcome. A
// prefix match leaves the engine awaiting the next chord in the chain;
// Abort or a subsequent NoMatch result resets it back to the root.
func (e *Engine) Press(mods x11.Keymod, key xproto.Keycode, button xproto.Button) Result {
	c := e.normalize(Chord{Mods: mods, Key: key, Button: button})

	e.mu.Lock()
	cur := e.root
	if e.active != nil {
		cur = e.active
	}

	next, ok := cur.resolve(c)
	if !ok {
		e.active = nil
		e.disarmTimeout()
		e.mu.Unlock()
		return Result{Kind: NoMatch}
	}
	if next.action != nil {
		e.active = nil
		e.disarmTimeout()
		a := *next.action
		e.mu.Unlock()
		return Result{Kind: TerminalCallback, Action: a}
	}
	e.active = next
	e.armTimeout()
	e.mu.Unlock()
	return Result{Kind: IntermediatePrefix}
}

// Abort cancels an in-progress prefix chain. A timeout or non-matching
// keypress during prefix navigation silently aborts back to the root.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = nil
	e.disarmTimeout()
}

// Active reports whether a prefix chain is currently in progress.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}
