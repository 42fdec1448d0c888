package wm

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

func TestClampSizeScenario3(t *testing.T) {
	hints := x11.SizeHints{
		Flags:     hintPMinSize | hintPResizeInc | hintPBaseSize,
		BaseWidth: 4, BaseHeight: 4,
		WidthInc: 6, HeightInc: 13,
		MinWidth: 80, MinHeight: 25,
	}
	w, _ := ClampSize(hints, 500.7, 200)
	if w != 496 {
		t.Fatalf("w = %d, want 496", w)
	}
}

func TestClampSizeRespectsMinimum(t *testing.T) {
	hints := x11.SizeHints{
		Flags:     hintPMinSize | hintPResizeInc,
		WidthInc:  1,
		HeightInc: 1,
		MinWidth:  80,
		MinHeight: 25,
	}
	w, h := ClampSize(hints, 10, 10)
	if w != 80 || h != 25 {
		t.Fatalf("got (%d, %d), want (80, 25)", w, h)
	}
}

func TestClampSizeRespectsMaximum(t *testing.T) {
	hints := x11.SizeHints{
		Flags:     hintPMinSize | hintPMaxSize | hintPResizeInc,
		WidthInc:  1, HeightInc: 1,
		MinWidth: 1, MinHeight: 1,
		MaxWidth: 100, MaxHeight: 100,
	}
	w, h := ClampSize(hints, 500, 500)
	if w > 100 || h > 100 {
		t.Fatalf("got (%d, %d), expected clamping to <= 100", w, h)
	}
}

func TestClampSizeDefaultsIncToOne(t *testing.T) {
	var hints x11.SizeHints
	w, h := ClampSize(hints, 123, 45)
	if w != 123 || h != 45 {
		t.Fatalf("got (%d, %d), want (123, 45) with no constraints set", w, h)
	}
}
