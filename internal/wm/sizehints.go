package wm

import (
	"math"

	"github.com/dimwm/dimwm/internal/x11"
)

// ICCCM WM_NORMAL_HINTS flag bits (ICCCM §4.1.2.3), duplicated here rather
// than imported from xgbutil/icccm so only internal/x11 depends on it
// directly.
const (
	hintUSPosition = 1 << 0
	hintUSSize     = 1 << 1
	hintPPosition  = 1 << 2
	hintPSize      = 1 << 3
	hintPMinSize   = 1 << 4
	hintPMaxSize   = 1 << 5
	hintPResizeInc = 1 << 6
	hintPAspect    = 1 << 7
	hintPBaseSize  = 1 << 8
	hintPWinGrav   = 1 << 9
)

// ClampSize snaps a candidate (width, height) to satisfy hints: within
// min..max on each axis, (value-base) a nonnegative multiple of inc, and
// aspect-ratio bounded if the client declared one. The candidate is taken as floating point because the
// move/resize engine computes it from pointer deltas.
func ClampSize(hints x11.SizeHints, width, height float64) (uint32, uint32) {
	w := clampAxis(width, baseOf(hints, true), minOf(hints, true), hints.MaxWidth, incOf(hints, true), hints.Has(hintPMaxSize))
	h := clampAxis(height, baseOf(hints, false), minOf(hints, false), hints.MaxHeight, incOf(hints, false), hints.Has(hintPMaxSize))
	w, h = clampAspect(hints, w, h)
	return w, h
}

func baseOf(hints x11.SizeHints, widthAxis bool) int32 {
	if hints.Has(hintPBaseSize) {
		if widthAxis {
			return hints.BaseWidth
		}
		return hints.BaseHeight
	}
	return minOf(hints, widthAxis)
}

func minOf(hints x11.SizeHints, widthAxis bool) int32 {
	if hints.Has(hintPMinSize) {
		if widthAxis {
			return hints.MinWidth
		}
		return hints.MinHeight
	}
	if hints.Has(hintPBaseSize) {
		if widthAxis {
			return hints.BaseWidth
		}
		return hints.BaseHeight
	}
	return 1
}

func incOf(hints x11.SizeHints, widthAxis bool) int32 {
	var inc int32
	if widthAxis {
		inc = hints.WidthInc
	} else {
		inc = hints.HeightInc
	}
	if inc <= 0 {
		return 1
	}
	return inc
}

// clampAxis finds the largest value <= candidate satisfying base + k*inc
// for integer k, clamped to [min, max] (e.g. base=4, inc=6, min=80,
// candidate=500.7 -> 496).
func clampAxis(candidate float64, base, min, max, inc int32, hasMax bool) uint32 {
	n := math.Floor((candidate - float64(base)) / float64(inc))
	if n < 0 {
		n = 0
	}
	val := base + int32(n)*inc
	if val < min {
		val = min
	}
	if hasMax && max > 0 && val > max {
		// Drop back to the largest inc-aligned value at or below max.
		n = math.Floor((float64(max) - float64(base)) / float64(inc))
		val = base + int32(n)*inc
	}
	if val < 1 {
		val = 1
	}
	return uint32(val)
}

func clampAspect(hints x11.SizeHints, w, h uint32) (uint32, uint32) {
	if !hints.Has(hintPAspect) || h == 0 {
		return w, h
	}
	ratio := float64(w) / float64(h)
	if hints.MinAspectDen > 0 {
		minRatio := float64(hints.MinAspectNum) / float64(hints.MinAspectDen)
		if ratio < minRatio {
			h = uint32(float64(w) / minRatio)
		}
	}
	if hints.MaxAspectDen > 0 {
		maxRatio := float64(hints.MaxAspectNum) / float64(hints.MaxAspectDen)
		if ratio > maxRatio {
			h = uint32(float64(w) / maxRatio)
		}
	}
	return w, h
}
