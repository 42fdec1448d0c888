package wm

import "testing"

func TestSloppyFocusEntersOnEnter(t *testing.T) {
	p := SloppyFocus{}
	if !p.OnEnter(&Client{}) {
		t.Fatal("SloppyFocus should focus on EnterNotify")
	}
	if focus, replay := p.OnButtonPress(&Client{}); focus || replay {
		t.Fatal("SloppyFocus should not react to ButtonPress")
	}
}

func TestClickToFocusIgnoresEnter(t *testing.T) {
	p := ClickToFocus{}
	if p.OnEnter(&Client{}) {
		t.Fatal("ClickToFocus should not focus on EnterNotify")
	}
	focus, replay := p.OnButtonPress(&Client{})
	if !focus || !replay {
		t.Fatal("ClickToFocus should focus and replay on ButtonPress")
	}
}

func TestNewFocusPolicyDefaultsToSloppy(t *testing.T) {
	if _, ok := NewFocusPolicy("bogus").(SloppyFocus); !ok {
		t.Fatal("expected unrecognized policy name to fall back to SloppyFocus")
	}
	if _, ok := NewFocusPolicy("click").(ClickToFocus); !ok {
		t.Fatal("expected \"click\" to resolve to ClickToFocus")
	}
}

func TestFocusManagerTrackUntrackAndPromote(t *testing.T) {
	fm := NewFocusManager(nil, SloppyFocus{}, false)
	a := &Client{Win: 1}
	b := &Client{Win: 2}
	fm.Track(a)
	fm.Track(b)
	fm.promote(b)
	if fm.list[0] != b {
		t.Fatalf("expected b promoted to head, got %+v", fm.list[0])
	}
	fm.Untrack(a)
	if len(fm.list) != 1 || fm.list[0] != b {
		t.Fatalf("expected only b to remain, got %+v", fm.list)
	}
}

func TestFocusManagerEnsureFocusFallsBackToRoot(t *testing.T) {
	fm := NewFocusManager(nil, SloppyFocus{}, false)
	a := &Client{Win: 1}
	fm.Track(a)
	// No client is visible, and current is already root, so EnsureFocus
	// must short-circuit without touching the (nil) connection.
	err := fm.EnsureFocus(func(*Client) bool { return false }, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.current != nil {
		t.Fatal("expected current to remain root")
	}
}
