package geom

// DefaultOverlapThreshold is the share of a window's area that must lie inside
// a region for the window to belong to it.
const DefaultOverlapThreshold = 0.80

// ValidThreshold reports whether t is a usable overlap threshold, a number in
// [0, 1]. NaN is rejected.
func ValidThreshold(t float64) bool {
	return t >= 0 && t <= 1
}

// Membership decides which region window moves out of and which one it moves
// into. A window belongs to a region when its overlap fraction is at least
// threshold; when it belongs to both, regionA wins. ok is false when the window
// belongs to neither region.
func Membership(regionA, regionB, window Rect, threshold float64) (source, dest Rect, ok bool) {
	inA := OverlapFraction(window, regionA) >= threshold
	inB := OverlapFraction(window, regionB) >= threshold

	switch {
	case inA:
		return regionA, regionB, true
	case inB:
		return regionB, regionA, true
	default:
		return Rect{}, Rect{}, false
	}
}

// ComputeSwap returns the frame window should have after the contents of
// regionA and regionB are exchanged. Windows belonging to neither region are
// returned unchanged.
func ComputeSwap(regionA, regionB, window Rect, threshold float64) Rect {
	source, dest, ok := Membership(regionA, regionB, window, threshold)
	if !ok {
		return window
	}
	return Relocate(source, dest, window)
}

// Relocate moves window, which belongs to source, into dest: the part of
// window inside source is remapped onto dest.
func Relocate(source, dest, window Rect) Rect {
	clamped, err := Clamp(window, source)
	if err != nil {
		// Only reachable with a zero threshold: the window doesn't touch
		// the source at all, so remap its raw frame.
		clamped = window
	}
	return Remap(source, dest, clamped)
}

// Remap maps r from the src region onto the dst region. Same-size regions
// translate r exactly. Otherwise each edge keeps its relative position along
// its own axis, and edges flush with a src boundary land exactly on the
// matching dst boundary.
func Remap(src, dst, r Rect) Rect {
	if src.SameSize(dst) {
		return r.Translate(dst.Left-src.Left, dst.Top-src.Top)
	}

	fromX := span{origin: src.Left, length: src.Width()}
	toX := span{origin: dst.Left, length: dst.Width()}
	fromY := span{origin: src.Top, length: src.Height()}
	toY := span{origin: dst.Top, length: dst.Height()}

	return Rect{
		Left:   mapEdge(r.Left, src.Left, dst.Left, fromX, toX),
		Right:  mapEdge(r.Right, src.Right, dst.Right, fromX, toX),
		Top:    mapEdge(r.Top, src.Top, dst.Top, fromY, toY),
		Bottom: mapEdge(r.Bottom, src.Bottom, dst.Bottom, fromY, toY),
	}
}

// span is one axis of a region.
type span struct {
	origin int
	length int
}

func mapEdge(edge, flushAt, snapTo int, from, to span) int {
	if edge == flushAt {
		return snapTo
	}
	if from.length == 0 {
		return to.origin
	}
	frac := floatSpan(from.origin, edge) / float64(from.length)
	return to.origin + int(frac*float64(to.length))
}
