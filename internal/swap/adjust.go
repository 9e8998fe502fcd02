package swap

import "github.com/1broseidon/regionswap/internal/geom"

// AdjustBounds converts a computed frame back into the bounds the window
// system moves. The per-edge margins between oldBounds and oldFrame (invisible
// borders, shadows, decorations) are carried over to newFrame. ok is false
// when the frame is unchanged and no move should be issued.
func AdjustBounds(oldBounds, oldFrame, newFrame geom.Rect) (geom.Rect, bool) {
	if newFrame == oldFrame {
		return oldBounds, false
	}
	return geom.Rect{
		Left:   newFrame.Left + (oldBounds.Left - oldFrame.Left),
		Right:  newFrame.Right + (oldBounds.Right - oldFrame.Right),
		Top:    newFrame.Top + (oldBounds.Top - oldFrame.Top),
		Bottom: newFrame.Bottom + (oldBounds.Bottom - oldFrame.Bottom),
	}, true
}
