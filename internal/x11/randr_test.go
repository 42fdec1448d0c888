package x11_test

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

func TestOutputAtPicksContainingOutput(t *testing.T) {
	outs := []x11.Output{
		{Rect: x11.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{Rect: x11.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
	}
	got := x11.OutputAt(outs, x11.Point{X: 2000, Y: 10})
	if got.Rect.X != 1920 {
		t.Fatalf("expected second output, got rect at x=%d", got.Rect.X)
	}
	got = x11.OutputAt(outs, x11.Point{X: 10, Y: 10})
	if got.Rect.X != 0 {
		t.Fatalf("expected first output, got rect at x=%d", got.Rect.X)
	}
}

func TestOutputAtFallsBackToFirst(t *testing.T) {
	outs := []x11.Output{
		{Rect: x11.Rect{X: 0, Y: 0, Width: 100, Height: 100}},
	}
	got := x11.OutputAt(outs, x11.Point{X: 9999, Y: 9999})
	if got.Rect.X != 0 {
		t.Fatal("expected fallback to only output")
	}
}

func TestOutputAtEmptyList(t *testing.T) {
	got := x11.OutputAt(nil, x11.Point{X: 0, Y: 0})
	if got.Rect.Width != 0 {
		t.Fatal("expected zero-value Output for empty list")
	}
}
