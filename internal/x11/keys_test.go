package x11_test

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

func TestModifiersTableResolvesAliases(t *testing.T) {
	cases := []struct {
		name string
		want x11.Keymod
	}{
		{"ctrl", x11.ModCtrl},
		{"control", x11.ModCtrl},
		{"lctrl", x11.ModCtrl},
		{"super", x11.Mod4},
		{"win", x11.Mod4},
		{"alt", x11.Mod1},
	}
	for _, c := range cases {
		got, ok := x11.Modifiers[c.name]
		if !ok {
			t.Fatalf("modifier %q not found", c.name)
		}
		if got != c.want {
			t.Fatalf("modifier %q = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestKeypadAliasesAreUnique(t *testing.T) {
	seen := make(map[uint8]bool)
	for kp := range x11.KeypadAliases {
		if seen[uint8(kp)] {
			t.Fatalf("duplicate keypad keycode %d", kp)
		}
		seen[uint8(kp)] = true
	}
}

func TestKeycodesTableCoversDigitsAndLetters(t *testing.T) {
	for _, r := range "0123456789abcdefghijklmnopqrstuvwxyz" {
		if _, ok := x11.Keycodes[string(r)]; !ok {
			t.Fatalf("missing keycode for %q", r)
		}
	}
}

func TestButtonsTableResolvesAliases(t *testing.T) {
	if x11.Buttons["lmb"] != x11.Buttons["mouse1"] {
		t.Fatal("lmb and mouse1 should resolve to the same button index")
	}
	if x11.Buttons["rmb"] == x11.Buttons["lmb"] {
		t.Fatal("rmb and lmb should not collide")
	}
}
