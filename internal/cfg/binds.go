package cfg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/dimwm/dimwm/internal/x11"
)

// Bind identifies a single chord: a modifier mask plus exactly one of a
// key or a pointer button. Every field is a plain comparable value so
// BindingMap can be a real map keyed on chord identity.
type Bind struct {
	Mods   x11.Keymod
	Key    xproto.Keycode
	Button xproto.Button

	str string
}

// String returns the original textual form of the bind.
func (b Bind) String() string { return b.str }

// UnmarshalTOML implements toml.Unmarshaler. A bind is written as
// hyphen-separated tokens, e.g. "mod4-shift-q" or "mod4-lmb".
func (b *Bind) UnmarshalTOML(value any) error {
	str, ok := value.(string)
	if !ok {
		return errors.New("bind value was not a string")
	}
	if str == "" {
		return errors.New("empty bind")
	}
	var hasKey, hasButton bool
	for _, tok := range strings.Split(str, "-") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch {
		case tok == "":
			continue
		case isCode(tok):
			num, err := strconv.Atoi(tok[4:])
			if err != nil {
				return fmt.Errorf("parse keycode in %q: %w", tok, err)
			}
			if hasKey {
				return fmt.Errorf("bind %q names more than one key", str)
			}
			b.Key = xproto.Keycode(num)
			hasKey = true
		case x11.Keycodes[tok] != 0 || tok == "0":
			if hasKey {
				return fmt.Errorf("bind %q names more than one key", str)
			}
			b.Key = x11.Keycodes[tok]
			hasKey = true
		case mod(tok) != 0:
			b.Mods |= mod(tok)
		case x11.Buttons[tok] != 0:
			if hasButton {
				return fmt.Errorf("bind %q names more than one button", str)
			}
			b.Button = x11.Buttons[tok]
			hasButton = true
		default:
			return fmt.Errorf("unrecognized bind element %q in %q", tok, str)
		}
	}
	if hasKey && hasButton {
		return fmt.Errorf("bind %q cannot name both a key and a button", str)
	}
	if !hasKey && !hasButton {
		return fmt.Errorf("bind %q names neither a key nor a button", str)
	}
	b.str = str
	return nil
}

func isCode(tok string) bool {
	return len(tok) > 4 && strings.HasPrefix(tok, "code")
}

func mod(tok string) x11.Keymod {
	m, ok := x11.Modifiers[tok]
	if !ok {
		return x11.ModNone
	}
	return m
}

// Action is a single unit of behavior a chord performs. Name is one of the
// built-in action identifiers the binding engine recognizes (see
// internal/wm/bind); Arg carries the action's single string parameter
// (a shell command for "spawn", a tagset expression for "tagset", etc.)
// when the action takes one.
type Action struct {
	Name string
	Arg  string
}

// UnmarshalTOML implements toml.Unmarshaler. An action is either a bare
// name ("focus-next") or a "name:arg" pair ("spawn:xterm",
// "tagset:work|mail").
func (a *Action) UnmarshalTOML(value any) error {
	str, ok := value.(string)
	if !ok {
		return errors.New("action value was not a string")
	}
	name, arg, hasArg := strings.Cut(str, ":")
	if name == "" {
		return fmt.Errorf("empty action name in %q", str)
	}
	a.Name = name
	if hasArg {
		a.Arg = arg
	}
	return nil
}

// Entry is the value side of a BindingMap: either a terminal Action, or a
// nested BindingMap naming the next chord in a prefix chain.
type Entry struct {
	Action *Action
	Chain  BindingMap
}

// BindingMap is a mapping from Bind to Entry, the top-level shape of the
// binding engine's configuration.
type BindingMap map[Bind]Entry

// UnmarshalTOML implements toml.Unmarshaler.
func (m *BindingMap) UnmarshalTOML(value any) error {
	raw, ok := value.(map[string]any)
	if !ok {
		return errors.New("bindings value was not a table")
	}
	*m = make(BindingMap, len(raw))
	seen := make(map[Bind]bool, len(raw))
	for chordStr, entryVal := range raw {
		var bind Bind
		if err := bind.UnmarshalTOML(chordStr); err != nil {
			return fmt.Errorf("parse bind %q: %w", chordStr, err)
		}
		entry, err := parseEntry(entryVal)
		if err != nil {
			return fmt.Errorf("bind %q: %w", chordStr, err)
		}
		id := bind
		id.str = ""
		if seen[id] {
			return fmt.Errorf("duplicate bind %q", chordStr)
		}
		seen[id] = true
		(*m)[bind] = entry
	}
	return nil
}

func parseEntry(value any) (Entry, error) {
	switch v := value.(type) {
	case string:
		var a Action
		if err := a.UnmarshalTOML(v); err != nil {
			return Entry{}, err
		}
		return Entry{Action: &a}, nil
	case map[string]any:
		var chain BindingMap
		if err := chain.UnmarshalTOML(v); err != nil {
			return Entry{}, err
		}
		return Entry{Chain: chain}, nil
	default:
		return Entry{}, errors.New("binding entry must be a string action or a nested table")
	}
}
