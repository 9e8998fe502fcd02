package geom

import "errors"

// ErrNoOverlap is returned by Clamp when the rectangle and the region do not
// intersect, or when either of them has no area.
var ErrNoOverlap = errors.New("rectangles do not overlap")

// Clamp returns the intersection of rect and region.
func Clamp(rect, region Rect) (Rect, error) {
	if rect.Empty() || region.Empty() {
		return Rect{}, ErrNoOverlap
	}
	if rect.Right <= region.Left || rect.Left >= region.Right {
		return Rect{}, ErrNoOverlap
	}
	if rect.Bottom <= region.Top || rect.Top >= region.Bottom {
		return Rect{}, ErrNoOverlap
	}

	return Rect{
		Left:   max(rect.Left, region.Left),
		Right:  min(rect.Right, region.Right),
		Top:    max(rect.Top, region.Top),
		Bottom: min(rect.Bottom, region.Bottom),
	}, nil
}

// OverlapFraction returns the share of window's area (0..1) that lies inside
// region. A window without area overlaps nothing.
func OverlapFraction(window, region Rect) float64 {
	isect, err := Clamp(window, region)
	if err != nil {
		return 0
	}
	// Spans are taken in float64: Right-Left overflows int for windows
	// spanning most of the coordinate range.
	w, h := floatSpan(window.Left, window.Right), floatSpan(window.Top, window.Bottom)
	if w <= 0 || h <= 0 {
		return 0
	}
	fx := floatSpan(isect.Left, isect.Right) / w
	fy := floatSpan(isect.Top, isect.Bottom) / h
	return min(fx*fy, 1)
}

func floatSpan(lo, hi int) float64 {
	return float64(hi) - float64(lo)
}
