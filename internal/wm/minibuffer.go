package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/x11"
	"github.com/pkg/errors"
)

// Minibuffer implements the one-shot modal text entry described in
// a prompt, an editable line seeded with initial text, and
// commit/rollback callbacks. It's shared between the dedicated minibuffer
// window and a Decorator's titlebar-as-text-field mode.
type Minibuffer struct {
	Prompt string

	runes  []rune
	cursor int

	commit   func(string)
	rollback func(string)
}

// NewMinibuffer constructs an editing session seeded with initial text
// and the cursor at end-of-line.
func NewMinibuffer(prompt, initial string, commit, rollback func(string)) *Minibuffer {
	runes := []rune(initial)
	return &Minibuffer{
		Prompt:   prompt,
		runes:    runes,
		cursor:   len(runes),
		commit:   commit,
		rollback: rollback,
	}
}

// Text returns the current edit buffer contents.
func (m *Minibuffer) Text() string { return string(m.runes) }

// Cursor returns the cursor's rune offset into Text().
func (m *Minibuffer) Cursor() int { return m.cursor }

// Insert inserts s at the cursor and advances it.
func (m *Minibuffer) Insert(s string) {
	r := []rune(s)
	out := make([]rune, 0, len(m.runes)+len(r))
	out = append(out, m.runes[:m.cursor]...)
	out = append(out, r...)
	out = append(out, m.runes[m.cursor:]...)
	m.runes = out
	m.cursor += len(r)
}

// MoveLeft/MoveRight/Home/End implement cursor navigation.
func (m *Minibuffer) MoveLeft() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Minibuffer) MoveRight() {
	if m.cursor < len(m.runes) {
		m.cursor++
	}
}

func (m *Minibuffer) Home() { m.cursor = 0 }
func (m *Minibuffer) End()  { m.cursor = len(m.runes) }

// DeleteChar removes the rune before the cursor (backspace).
func (m *Minibuffer) DeleteChar() {
	if m.cursor == 0 {
		return
	}
	m.runes = append(m.runes[:m.cursor-1], m.runes[m.cursor:]...)
	m.cursor--
}

// DeleteWord removes the run of non-space runes (and any trailing space)
// immediately before the cursor, the minibuffer's one word-granularity op.
func (m *Minibuffer) DeleteWord() {
	i := m.cursor
	for i > 0 && m.runes[i-1] == ' ' {
		i--
	}
	for i > 0 && m.runes[i-1] != ' ' {
		i--
	}
	m.runes = append(m.runes[:i], m.runes[m.cursor:]...)
	m.cursor = i
}

// Yank inserts primary, the contents of the PRIMARY selection as already
// fetched by the caller; the minibuffer does no selection handling of its
// own.
func (m *Minibuffer) Yank(primary string) {
	m.Insert(primary)
}

// Commit finalizes the edit, invoking the commit callback with the final
// text.
func (m *Minibuffer) Commit() {
	if m.commit != nil {
		m.commit(m.Text())
	}
}

// Rollback abandons the edit, invoking the rollback callback with the
// text as it stood at abort time.
func (m *Minibuffer) Rollback() {
	if m.rollback != nil {
		m.rollback(m.Text())
	}
}

// minibufferWindow is the manager-owned override-redirect window backing
// a standalone (non-titlebar) minibuffer instance. Only one may be mapped
// at a time.
type minibufferWindow struct {
	conn *x11.Conn
	win  x11.Win
	buf  *Minibuffer
}

// newMinibufferWindow creates the override-redirect child used for
// minibuffer prompts that aren't tied to any client's titlebar (e.g. the
// tagset-switch prompt).
func newMinibufferWindow(conn *x11.Conn, geom x11.Rect, bg uint32) (*minibufferWindow, error) {
	win, err := conn.CreateOverrideRedirectWindow(geom, bg)
	if err != nil {
		return nil, errors.Wrap(err, "create minibuffer window")
	}
	return &minibufferWindow{conn: conn, win: win}, nil
}

// Open maps the window, grabs the keyboard, and begins an edit session.
func (mw *minibufferWindow) Open(prompt, initial string, commit, rollback func(string), now xproto.Timestamp) error {
	mw.buf = NewMinibuffer(prompt, initial, commit, rollback)
	if err := mw.conn.MapWindow(mw.win); err != nil {
		return errors.Wrap(err, "map minibuffer")
	}
	if err := mw.conn.GrabKeyboard(now); err != nil {
		return errors.Wrap(err, "grab keyboard for minibuffer")
	}
	return nil
}

// Close ungrabs the keyboard and unmaps the window; called on commit or
// abort.
func (mw *minibufferWindow) Close(now xproto.Timestamp) error {
	mw.buf = nil
	if err := mw.conn.UngrabKeyboard(now); err != nil {
		return errors.Wrap(err, "ungrab keyboard")
	}
	return mw.conn.UnmapWindow(mw.win)
}

// Active reports whether an edit session is currently open.
func (mw *minibufferWindow) Active() bool { return mw.buf != nil }

// Buffer returns the active edit session, or nil.
func (mw *minibufferWindow) Buffer() *Minibuffer { return mw.buf }
