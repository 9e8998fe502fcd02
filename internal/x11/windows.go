package x11

import (
	"fmt"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Extents are per-edge margins around a window, as published in
// _NET_FRAME_EXTENTS and _GTK_FRAME_EXTENTS.
type Extents struct {
	Left, Right, Top, Bottom int
}

// MoveResizeWindow moves and resizes a client window. x and y are the client
// window's own origin in root coordinates, not its frame's.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window %d: invalid size %dx%d", windowID, width, height)
	}
	// A maximized window ignores geometry requests on most WMs.
	if err := c.unmaximizeWindow(windowID); err != nil {
		return fmt.Errorf("unmaximize window %d: %w", windowID, err)
	}

	// Static gravity makes the WM interpret x/y as the client origin, which is
	// what the caller computed from GetGeometry.
	err := ewmh.MoveresizeWindowExtra(
		c.XUtil,
		windowID,
		x, y, width, height,
		xproto.GravityStatic,
		2, // pager/direct action
		true, true,
	)
	if err == nil {
		return nil
	}

	// No EWMH support: configure the window directly.
	mask, values := configureValues(x, y, width, height)
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check(); err != nil {
		return fmt.Errorf("configure window %d: %w", windowID, err)
	}
	return nil
}

// configureValues builds a ConfigureWindow request for a full move and
// resize. Coordinates are sign-extended into the 32-bit value list.
func configureValues(x, y, width, height int) (uint16, []uint32) {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	return mask, []uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)}
}

// unmaximizeWindow removes maximized state from a window. A window without
// _NET_WM_STATE has nothing to remove.
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// WindowGeometry returns the client window rectangle in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (geom.Rect, error) {
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("get geometry of window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("translate coordinates of window %d: %w", windowID, err)
	}

	return geom.FromXYWH(int(translate.DstX), int(translate.DstY), int(g.Width), int(g.Height)), nil
}

// GetFrameExtents returns the window decoration sizes drawn by the WM. Windows
// without _NET_FRAME_EXTENTS have no decorations.
func (c *Connection) GetFrameExtents(windowID xproto.Window) Extents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return Extents{}
	}
	return Extents{Left: extents.Left, Right: extents.Right, Top: extents.Top, Bottom: extents.Bottom}
}

// GetGtkFrameExtents returns the invisible shadow margins client-side
// decorated windows include in their own geometry.
func (c *Connection) GetGtkFrameExtents(windowID xproto.Window) Extents {
	raw, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, windowID, "_GTK_FRAME_EXTENTS"))
	if err != nil || len(raw) != 4 {
		return Extents{}
	}
	return Extents{Left: int(raw[0]), Right: int(raw[1]), Top: int(raw[2]), Bottom: int(raw[3])}
}

// VisibleFrame derives the rectangle a user sees from a client rectangle: WM
// decorations are added and client-side shadows removed.
func VisibleFrame(client geom.Rect, decorations, shadows Extents) geom.Rect {
	return geom.Rect{
		Left:   client.Left - decorations.Left + shadows.Left,
		Right:  client.Right + decorations.Right - shadows.Right,
		Top:    client.Top - decorations.Top + shadows.Top,
		Bottom: client.Bottom + decorations.Bottom - shadows.Bottom,
	}
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_UTILITY":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// IsHidden reports whether the window is minimized or otherwise not shown.
func (c *Connection) IsHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (c *Connection) hasWindowType(windowID xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// ClientWindows returns the managed top-level windows in stacking order,
// bottom first, falling back to mapping order.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	if clients, err := ewmh.ClientListStackingGet(c.XUtil); err == nil && len(clients) > 0 {
		return clients, nil
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}
