package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestRemoteControlHandleExitPassesTheTimestampAndCommandThrough(t *testing.T) {
	var gotTime xproto.Timestamp
	var gotCmd []string
	var called bool
	rc := NewRemoteControl(nil, nil, func(cmd []string, t xproto.Timestamp) error {
		called = true
		gotTime = t
		gotCmd = cmd
		return nil
	})
	rc.getCommand = func() []string { return []string{"dimwm"} }
	ev := xproto.ClientMessageEvent{
		Data: xproto.ClientMessageDataUnionData32New([]uint32{42, 0, 0, 0, 0}),
	}
	if err := rc.handleExit(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected shutdown callback to be invoked")
	}
	if gotTime != 42 {
		t.Fatalf("expected timestamp 42, got %d", gotTime)
	}
	if len(gotCmd) != 1 || gotCmd[0] != "dimwm" {
		t.Fatalf("expected cmd from getCommand to be passed through, got %v", gotCmd)
	}
}

func TestRemoteControlHandleExitNoopWithoutShutdownHandler(t *testing.T) {
	rc := NewRemoteControl(nil, nil, nil)
	ev := xproto.ClientMessageEvent{
		Data: xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	if err := rc.handleExit(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
