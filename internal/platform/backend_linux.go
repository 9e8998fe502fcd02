//go:build linux

package platform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Open connects to the default X11 display.
func Open() (Backend, error) {
	return NewLinuxBackendFromDisplay()
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops a running EventLoop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays with their dock-free work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: m.Bounds,
			Usable: conn.UsableArea(m),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// Windows lists the normal, non-hidden windows on the current desktop in
// stacking order.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	currentDesktop, desktopErr := conn.GetCurrentDesktop()
	hasCurrentDesktop := desktopErr == nil

	collect := NewCollector(func(w Window) bool {
		return !w.Frame.Empty()
	})
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) || conn.IsHidden(windowID) {
			continue
		}
		if hasCurrentDesktop && !conn.OnDesktop(windowID, currentDesktop) {
			continue
		}

		bounds, err := conn.WindowGeometry(windowID)
		if err != nil {
			continue
		}

		pid := 0
		if p, err := ewmh.WmPidGet(conn.XUtil, windowID); err == nil {
			pid = int(p)
		}

		collect.Add(Window{
			ID:     WindowID(windowID),
			PID:    pid,
			AppID:  b.windowAppID(windowID),
			Title:  b.windowTitle(windowID),
			Bounds: bounds,
			Frame:  x11.VisibleFrame(bounds, conn.GetFrameExtents(windowID), conn.GetGtkFrameExtents(windowID)),
		})
	}

	return collect.Items(), nil
}

// MoveResize moves and resizes a window's client area to bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds geom.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if bounds.Empty() {
		return fmt.Errorf("window %d: refusing empty bounds %s", windowID, bounds)
	}

	x, y, w, h := bounds.XYWH()
	return conn.MoveResizeWindow(xproto.Window(windowID), x, y, w, h)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) windowAppID(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(b.conn.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (b *LinuxBackend) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(b.conn.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(b.conn.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}
