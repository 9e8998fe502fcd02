package platform

import "github.com/1broseidon/regionswap/internal/geom"

// WindowID is a platform-neutral window identifier.
type WindowID uint64

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Bounds geom.Rect `json:"bounds"`
	Usable geom.Rect `json:"usable"`
}

// Window contains metadata and geometry for a top-level window.
//
// Bounds is the rectangle the window system reports and accepts in move
// requests. Frame is what the user sees: Bounds without invisible resize
// borders or shadows, plus any window-manager decorations.
type Window struct {
	ID     WindowID  `json:"id"`
	PID    int       `json:"pid,omitempty"`
	AppID  string    `json:"app_id,omitempty"`
	Title  string    `json:"title"`
	Bounds geom.Rect `json:"bounds"`
	Frame  geom.Rect `json:"frame"`
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// Displays returns active displays ordered by ID.
	Displays() ([]Display, error)
	// Windows returns a snapshot of the user-movable top-level windows.
	Windows() ([]Window, error)
	// MoveResize applies new bounds to a window.
	MoveResize(id WindowID, bounds geom.Rect) error
}

// Closer is implemented by backends holding a window-system connection.
type Closer interface {
	Disconnect()
}
