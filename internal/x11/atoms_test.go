package x11_test

import (
	"testing"

	"github.com/dimwm/dimwm/internal/x11"
)

func TestAtomConstantsAreNonEmpty(t *testing.T) {
	names := []string{
		x11.AtomWMState, x11.AtomWMProtocols, x11.AtomWMDeleteWindow,
		x11.AtomWMTakeFocus, x11.AtomWMNormalHints, x11.AtomWMHints,
		x11.AtomWMClass, x11.AtomWMCommand, x11.AtomWMTransientFor,
		x11.AtomNetWMState, x11.AtomNetActiveWindow, x11.AtomDimTags,
		x11.AtomDimExit, x11.AtomDimTagsetExpr, x11.AtomDimTagsetUpdate,
	}
	for _, n := range names {
		if n == "" {
			t.Fatal("found empty atom name constant")
		}
	}
}

func TestPrivateAtomsUseDimPrefix(t *testing.T) {
	private := []string{x11.AtomDimTags, x11.AtomDimExit, x11.AtomDimTagsetExpr, x11.AtomDimTagsetUpdate}
	for _, n := range private {
		if len(n) < 6 || n[:5] != "_DIM_" {
			t.Fatalf("private atom %q does not use the _DIM_ prefix", n)
		}
	}
}
