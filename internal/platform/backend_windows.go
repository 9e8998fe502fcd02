//go:build windows

package platform

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/1broseidon/regionswap/internal/geom"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetWindowLongPtrW   = user32.NewProc("GetWindowLongPtrW")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowTextLenW   = user32.NewProc("GetWindowTextLengthW")
	procMoveWindow          = user32.NewProc("MoveWindow")
)

const (
	gwlExStyle      = ^uintptr(19) // GWL_EXSTYLE (-20)
	wsExToolWindow  = 0x00000080
	cchDeviceName   = 32
	maxClassNameLen = 256
)

// Win32 caps the number of callbacks a process may create, so each
// enumeration callback is created once and feeds whichever collector is
// active. enumMu serializes enumerations.
var (
	enumMu         sync.Mutex
	activeMonitors *Collector[uintptr]
	activeWindows  *Collector[Window]

	monitorCallback = sync.OnceValue(func() uintptr {
		return windows.NewCallback(func(hmon, hdc, rect, lparam uintptr) uintptr {
			if activeMonitors.Add(hmon) {
				return 1
			}
			return 0
		})
	})
	windowCallback = sync.OnceValue(func() uintptr {
		return windows.NewCallback(func(hwnd windows.HWND, lparam uintptr) uintptr {
			if !isRelevantWindow(hwnd) {
				return 1
			}
			w, err := describeWindow(hwnd)
			if err != nil {
				return 1
			}
			if activeWindows.Add(w) {
				return 1
			}
			return 0
		})
	})
)

type monitorInfoEx struct {
	Size    uint32
	Monitor windows.Rect
	Work    windows.Rect
	Flags   uint32
	Device  [cchDeviceName]uint16
}

// WindowsBackend talks to user32 and DWM directly. It holds no handles.
type WindowsBackend struct{}

var _ Backend = (*WindowsBackend)(nil)

// NewWindowsBackend returns the Win32 backend.
func NewWindowsBackend() (*WindowsBackend, error) {
	if err := procEnumDisplayMonitors.Find(); err != nil {
		return nil, fmt.Errorf("user32 unavailable: %w", err)
	}
	return &WindowsBackend{}, nil
}

// Open returns the Win32 backend.
func Open() (Backend, error) {
	return NewWindowsBackend()
}

// Displays returns monitors in enumeration order, IDs starting at 0.
func (b *WindowsBackend) Displays() ([]Display, error) {
	enumMu.Lock()
	activeMonitors = NewCollector[uintptr](nil)
	r, _, callErr := procEnumDisplayMonitors.Call(0, 0, monitorCallback(), 0)
	handles := activeMonitors.Items()
	activeMonitors = nil
	enumMu.Unlock()
	if r == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %w", callErr)
	}

	displays := make([]Display, 0, len(handles))
	for i, hmon := range handles {
		info := monitorInfoEx{Size: uint32(unsafe.Sizeof(monitorInfoEx{}))}
		r, _, callErr := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&info)))
		if r == 0 {
			return nil, fmt.Errorf("GetMonitorInfoW(%d) failed: %w", i, callErr)
		}
		displays = append(displays, Display{
			ID:     i,
			Name:   windows.UTF16ToString(info.Device[:]),
			Bounds: fromWin32(info.Monitor),
			Usable: fromWin32(info.Work),
		})
	}
	return displays, nil
}

// Windows lists visible, uncloaked, non-tool top-level windows in Z order.
func (b *WindowsBackend) Windows() ([]Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	activeWindows = NewCollector(func(w Window) bool {
		return !w.Frame.Empty()
	})
	defer func() { activeWindows = nil }()

	if err := windows.EnumWindows(windowCallback(), nil); err != nil {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	return activeWindows.Items(), nil
}

// MoveResize moves a window so that its outer rectangle matches bounds.
func (b *WindowsBackend) MoveResize(id WindowID, bounds geom.Rect) error {
	if bounds.Empty() {
		return fmt.Errorf("window %d: refusing empty bounds %s", id, bounds)
	}
	x, y, w, h := bounds.XYWH()
	r, _, callErr := procMoveWindow.Call(
		uintptr(id),
		uintptr(int32(x)),
		uintptr(int32(y)),
		uintptr(int32(w)),
		uintptr(int32(h)),
		1, // repaint
	)
	if r == 0 {
		return fmt.Errorf("MoveWindow(%d) failed: %w", id, callErr)
	}
	return nil
}

func isRelevantWindow(hwnd windows.HWND) bool {
	if !windows.IsWindowVisible(hwnd) {
		return false
	}
	exStyle, _, _ := procGetWindowLongPtrW.Call(uintptr(hwnd), gwlExStyle)
	if exStyle&wsExToolWindow != 0 {
		return false
	}
	var cloaked uint32
	_ = windows.DwmGetWindowAttribute(hwnd, windows.DWMWA_CLOAKED, unsafe.Pointer(&cloaked), uint32(unsafe.Sizeof(cloaked)))
	return cloaked == 0
}

func describeWindow(hwnd windows.HWND) (Window, error) {
	var rect windows.Rect
	r, _, callErr := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&rect)))
	if r == 0 {
		return Window{}, fmt.Errorf("GetWindowRect failed: %w", callErr)
	}
	bounds := fromWin32(rect)

	// Without DWM the visible frame is the window rectangle itself.
	frame := bounds
	var extended windows.Rect
	if err := windows.DwmGetWindowAttribute(hwnd, windows.DWMWA_EXTENDED_FRAME_BOUNDS, unsafe.Pointer(&extended), uint32(unsafe.Sizeof(extended))); err == nil {
		frame = fromWin32(extended)
	}

	var pid uint32
	_, _ = windows.GetWindowThreadProcessId(hwnd, &pid)

	return Window{
		ID:     WindowID(hwnd),
		PID:    int(pid),
		AppID:  windowClass(hwnd),
		Title:  windowTitle(hwnd),
		Bounds: bounds,
		Frame:  frame,
	}, nil
}

func windowTitle(hwnd windows.HWND) string {
	n, _, _ := procGetWindowTextLenW.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func windowClass(hwnd windows.HWND) string {
	buf := make([]uint16, maxClassNameLen)
	n, err := windows.GetClassName(hwnd, &buf[0], int32(len(buf)))
	if err != nil || n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func fromWin32(r windows.Rect) geom.Rect {
	return geom.Rect{
		Left:   int(r.Left),
		Right:  int(r.Right),
		Top:    int(r.Top),
		Bottom: int(r.Bottom),
	}
}
