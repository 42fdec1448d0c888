package x11_test

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

func TestRectEdges(t *testing.T) {
	r := x11.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if r.Left() != 10 {
		t.Fatalf("Left() = %d, want 10", r.Left())
	}
	if r.Top() != 20 {
		t.Fatalf("Top() = %d, want 20", r.Top())
	}
	if r.Right() != 110 {
		t.Fatalf("Right() = %d, want 110", r.Right())
	}
	if r.Bottom() != 70 {
		t.Fatalf("Bottom() = %d, want 70", r.Bottom())
	}
}

func TestRectZeroValue(t *testing.T) {
	var r x11.Rect
	if r.Right() != 0 || r.Bottom() != 0 {
		t.Fatal("zero-value rect should have zero edges")
	}
}
