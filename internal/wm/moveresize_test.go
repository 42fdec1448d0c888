package wm

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

func TestHandleAtCorners(t *testing.T) {
	cases := []struct {
		px, py int32
		want   Handle
	}{
		{0, 0, HandleNW},
		{99, 0, HandleNE},
		{0, 99, HandleSW},
		{99, 99, HandleSE},
		{50, 0, HandleN},
		{50, 99, HandleS},
	}
	for _, tc := range cases {
		if got := HandleAt(tc.px, tc.py, 100, 100); got != tc.want {
			t.Errorf("HandleAt(%d,%d) = %v, want %v", tc.px, tc.py, got, tc.want)
		}
	}
}

func TestCycleHandleWrapsAround(t *testing.T) {
	mr := &MoveResize{resizing: true, handle: HandleNW}
	mr.CycleHandle(0)
	if mr.handle != handleOrder[0] {
		t.Fatalf("expected wraparound to %v, got %v", handleOrder[0], mr.handle)
	}
}

func TestCycleHandleNoopDuringMove(t *testing.T) {
	mr := &MoveResize{resizing: false, handle: HandleNone}
	mr.CycleHandle(0)
	if mr.handle != HandleNone {
		t.Fatal("CycleHandle must do nothing during a move")
	}
}

func TestSnapWithinThreshold(t *testing.T) {
	got, ok := snap(103, []int32{100, 500}, 5)
	if !ok || got != 100 {
		t.Fatalf("snap = (%d, %v), want (100, true)", got, ok)
	}
}

func TestSnapOutsideThresholdLeavesUnchanged(t *testing.T) {
	got, ok := snap(200, []int32{100, 500}, 5)
	if ok || got != 200 {
		t.Fatalf("snap = (%d, %v), want (200, false)", got, ok)
	}
}

func TestMoveCandidateSnapsToScreenEdge(t *testing.T) {
	c := &Client{Geometry: x11.Rect{X: 50, Y: 50, Width: 200, Height: 100}}
	screen := x11.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	mr := BeginMove(nil, c, 53, 53, 5, screen, nil, nil, nil, nil)
	got := mr.moveCandidate(3, 53)
	if got.X != 0 {
		t.Fatalf("expected snap to left screen edge (X=0), got %d", got.X)
	}
}

func TestResizeCandidateEnforcesSizeHints(t *testing.T) {
	c := &Client{
		Geometry: x11.Rect{X: 0, Y: 0, Width: 100, Height: 100},
		SizeHints: x11.SizeHints{
			Flags: hintPMinSize | hintPResizeInc, WidthInc: 1, HeightInc: 1,
			MinWidth: 50, MinHeight: 50,
		},
	}
	screen := x11.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	mr := BeginResize(nil, c, 99, 99, 5, screen, nil, nil, nil, nil)
	got := mr.resizeCandidate(10, 10)
	if got.Width < 50 || got.Height < 50 {
		t.Fatalf("expected size-hint floor of 50, got %dx%d", got.Width, got.Height)
	}
}
