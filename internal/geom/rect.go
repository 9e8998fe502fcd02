// Package geom holds the pure geometry behind a region swap: rectangle
// intersection, overlap fractions and the proportional remap between two
// regions of the virtual desktop.
package geom

import "fmt"

// Rect is an axis-aligned rectangle in virtual-desktop coordinates. Right and
// Bottom are exclusive edges, so Width is Right-Left.
type Rect struct {
	Left   int `json:"left" yaml:"left"`
	Right  int `json:"right" yaml:"right"`
	Top    int `json:"top" yaml:"top"`
	Bottom int `json:"bottom" yaml:"bottom"`
}

// FromXYWH builds a Rect from an origin and a size.
func FromXYWH(x, y, width, height int) Rect {
	return Rect{Left: x, Right: x + width, Top: y, Bottom: y + height}
}

// Translate shifts all four edges; width and height are unchanged.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{
		Left:   r.Left + dx,
		Right:  r.Right + dx,
		Top:    r.Top + dy,
		Bottom: r.Bottom + dy,
	}
}

func (r Rect) Width() int  { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether r has zero or negative area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// SameSize reports whether r and o have identical width and height.
func (r Rect) SameSize(o Rect) bool {
	return r.Width() == o.Width() && r.Height() == o.Height()
}

// XYWH returns the origin and size, the form OS move calls take.
func (r Rect) XYWH() (x, y, width, height int) {
	return r.Left, r.Top, r.Width(), r.Height()
}

func (r Rect) String() string {
	return fmt.Sprintf("{%d,%d %dx%d}", r.Left, r.Top, r.Width(), r.Height())
}
