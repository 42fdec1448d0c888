package bind_test

import (
	"testing"

	"github.com/dimwm/dimwm/internal/wm/bind"
	"github.com/dimwm/dimwm/internal/x11"
)

func TestPressMatchesTerminalChord(t *testing.T) {
	e := bind.New(x11.ModLock)
	chord := bind.Chord{Mods: x11.Mod4, Key: 24}
	e.Bind([]bind.Chord{chord}, bind.Action{Name: "spawn", Arg: "dmenu_run"})

	res := e.Press(x11.Mod4, 24, 0)
	if res.Kind != bind.TerminalCallback {
		t.Fatalf("Kind = %v, want TerminalCallback", res.Kind)
	}
	if res.Action.Name != "spawn" {
		t.Fatalf("Action = %+v", res.Action)
	}
}

func TestPressMasksIgnoredModifiers(t *testing.T) {
	e := bind.New(x11.ModLock)
	chord := bind.Chord{Mods: x11.Mod4, Key: 24}
	e.Bind([]bind.Chord{chord}, bind.Action{Name: "spawn"})

	res := e.Press(x11.Mod4|x11.ModLock, 24, 0)
	if res.Kind != bind.TerminalCallback {
		t.Fatal("expected CapsLock to be masked out of the match")
	}
}

func TestPressFollowsPrefixChain(t *testing.T) {
	e := bind.New(x11.ModNone)
	prefix := bind.Chord{Mods: x11.Mod4, Key: 65} // space
	leaf := bind.Chord{Key: 38}                   // a
	e.Bind([]bind.Chord{prefix, leaf}, bind.Action{Name: "spawn", Arg: "dmenu_run"})

	first := e.Press(x11.Mod4, 65, 0)
	if first.Kind != bind.IntermediatePrefix {
		t.Fatalf("Kind = %v, want IntermediatePrefix", first.Kind)
	}
	if !e.Active() {
		t.Fatal("expected the engine to be mid-prefix")
	}
	second := e.Press(0, 38, 0)
	if second.Kind != bind.TerminalCallback {
		t.Fatalf("Kind = %v, want TerminalCallback", second.Kind)
	}
	if e.Active() {
		t.Fatal("expected the engine to return to the root after a terminal match")
	}
}

func TestPressAbortsPrefixOnNoMatch(t *testing.T) {
	e := bind.New(x11.ModNone)
	prefix := bind.Chord{Mods: x11.Mod4, Key: 65}
	leaf := bind.Chord{Key: 38}
	e.Bind([]bind.Chord{prefix, leaf}, bind.Action{Name: "spawn"})

	e.Press(x11.Mod4, 65, 0)
	res := e.Press(0, 99, 0)
	if res.Kind != bind.NoMatch {
		t.Fatalf("Kind = %v, want NoMatch", res.Kind)
	}
	if e.Active() {
		t.Fatal("expected the prefix to be aborted after a non-matching chord")
	}
}

func TestPressResolvesKeypadAlias(t *testing.T) {
	e := bind.New(x11.ModNone)
	// Bind to the non-keypad "Down" arrow keycode.
	e.Bind([]bind.Chord{{Mods: x11.Mod4, Key: 116}}, bind.Action{Name: "focus-next"})

	// KP_Down (88) should resolve to the same binding.
	res := e.Press(x11.Mod4, 88, 0)
	if res.Kind != bind.TerminalCallback {
		t.Fatalf("expected keypad alias to resolve, got %v", res.Kind)
	}
}

func TestAbortResetsActivePrefix(t *testing.T) {
	e := bind.New(x11.ModNone)
	e.Bind([]bind.Chord{{Mods: x11.Mod4, Key: 65}, {Key: 38}}, bind.Action{Name: "spawn"})
	e.Press(x11.Mod4, 65, 0)
	e.Abort()
	if e.Active() {
		t.Fatal("expected Abort to clear the active prefix")
	}
}
