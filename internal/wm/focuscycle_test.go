package wm

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

// noFocusProtoClient builds a client that Focus can commit to without
// issuing any X request, so these tests can drive FocusManager against a
// nil *x11.Conn.
func noFocusProtoClient(win x11.Win) *Client {
	return &Client{Win: win, OverrideRedirect: true}
}

func TestFocusCycleBeginIsNoopWhenAlreadyActive(t *testing.T) {
	fc := NewFocusCycle(nil, nil, nil)
	a := noFocusProtoClient(1)
	b := &Client{Win: 2}
	fc.Begin([]*Client{a}, x11.Mod1)
	fc.Begin([]*Client{b}, x11.Mod4)
	if fc.Current() != a {
		t.Fatalf("second Begin should be a no-op while active, got %+v", fc.Current())
	}
}

func TestFocusCycleNextWrapsAround(t *testing.T) {
	fc := NewFocusCycle(nil, nil, nil)
	a := noFocusProtoClient(1)
	b := &Client{Win: 2}
	fc.Begin([]*Client{a, b}, x11.Mod1)
	fc.Next()
	if fc.Current() != b {
		t.Fatalf("expected b after Next, got %+v", fc.Current())
	}
	fc.Next()
	if fc.Current() != a {
		t.Fatalf("expected wraparound back to a, got %+v", fc.Current())
	}
}

func TestFocusCyclePrevWrapsBackward(t *testing.T) {
	fc := NewFocusCycle(nil, nil, nil)
	a := noFocusProtoClient(1)
	b := &Client{Win: 2}
	fc.Begin([]*Client{a, b}, x11.Mod1)
	fc.Prev()
	if fc.Current() != b {
		t.Fatalf("expected wraparound to b on Prev from index 0, got %+v", fc.Current())
	}
}

func TestFocusCycleHandleKeyReleaseIgnoresPartialRelease(t *testing.T) {
	fm := NewFocusManager(nil, SloppyFocus{}, false)
	fc := NewFocusCycle(fm, nil, nil)
	a := noFocusProtoClient(1)
	fc.Begin([]*Client{a}, x11.Mod1|x11.Mod4)
	if err := fc.HandleKeyRelease(x11.Mod4, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fc.Active() {
		t.Fatal("cycle should remain active while any cycle modifier is still held")
	}
}

func TestFocusCycleHandleKeyReleaseCommitsOnFullRelease(t *testing.T) {
	fm := NewFocusManager(nil, SloppyFocus{}, false)
	fc := NewFocusCycle(fm, nil, nil)
	a := noFocusProtoClient(1)
	fc.Begin([]*Client{a}, x11.Mod1)
	if err := fc.HandleKeyRelease(0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.Active() {
		t.Fatal("cycle should close once all cycle modifiers are released")
	}
	if fm.Current() != a {
		t.Fatalf("expected focus committed to a, got %+v", fm.Current())
	}
}

func TestFocusCycleAbortClearsStateWithoutFocusing(t *testing.T) {
	fm := NewFocusManager(nil, SloppyFocus{}, false)
	fc := NewFocusCycle(fm, nil, nil)
	a := noFocusProtoClient(1)
	fc.Begin([]*Client{a}, x11.Mod1)
	fc.Abort()
	if fc.Active() {
		t.Fatal("expected Abort to deactivate the cycle")
	}
	if fm.Current() != nil {
		t.Fatal("Abort must not change focus")
	}
}
