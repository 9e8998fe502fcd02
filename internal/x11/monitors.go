package x11

import (
	"fmt"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds geom.Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			Bounds: geom.FromXYWH(int(crtcInfo.X), int(crtcInfo.Y), int(crtcInfo.Width), int(crtcInfo.Height)),
		})
	}

	return monitors, nil
}

// UsableArea returns the part of the monitor not covered by panels and docks.
// Dock struts are preferred; _NET_WORKAREA is the fallback. If neither is
// available the full monitor bounds are returned.
func (c *Connection) UsableArea(m Monitor) geom.Rect {
	if usable, ok := c.strutArea(m); ok {
		return usable
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return m.Bounds
	}
	desktopIndex := 0
	if current, err := c.GetCurrentDesktop(); err == nil && current >= 0 && current < len(workArea) {
		desktopIndex = current
	}
	wa := workArea[desktopIndex]
	waRect := geom.FromXYWH(int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))

	// _NET_WORKAREA spans the whole root window; only keep its part on m.
	usable, err := geom.Clamp(m.Bounds, waRect)
	if err != nil {
		return m.Bounds
	}
	return usable
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (c *Connection) strutArea(m Monitor) (geom.Rect, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geom.Rect{}, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return geom.Rect{}, false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !c.hasWindowType(windowID, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			accumulateStruts(m.Bounds, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			}
			accumulateStruts(m.Bounds, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return geom.Rect{}, false
	}

	usable := geom.Rect{
		Left:   m.Bounds.Left + struts.left,
		Right:  m.Bounds.Right - struts.right,
		Top:    m.Bounds.Top + struts.top,
		Bottom: m.Bounds.Bottom - struts.bottom,
	}
	if usable.Empty() {
		return m.Bounds, true
	}
	return usable, true
}

// accumulateStruts grows acc by the part of each strut band that covers mon.
func accumulateStruts(mon geom.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		band := geom.Rect{Left: int(sp.TopStartX), Right: int(sp.TopEndX) + 1, Top: 0, Bottom: int(sp.Top)}
		if isect, err := geom.Clamp(band, mon); err == nil {
			acc.top = max(acc.top, isect.Height())
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		band := geom.Rect{Left: int(sp.BottomStartX), Right: int(sp.BottomEndX) + 1, Top: rootHeight - int(sp.Bottom), Bottom: rootHeight}
		if isect, err := geom.Clamp(band, mon); err == nil {
			acc.bottom = max(acc.bottom, isect.Height())
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		band := geom.Rect{Left: 0, Right: int(sp.Left), Top: int(sp.LeftStartY), Bottom: int(sp.LeftEndY) + 1}
		if isect, err := geom.Clamp(band, mon); err == nil {
			acc.left = max(acc.left, isect.Width())
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		band := geom.Rect{Left: rootWidth - int(sp.Right), Right: rootWidth, Top: int(sp.RightStartY), Bottom: int(sp.RightEndY) + 1}
		if isect, err := geom.Clamp(band, mon); err == nil {
			acc.right = max(acc.right, isect.Width())
		}
	}
}
