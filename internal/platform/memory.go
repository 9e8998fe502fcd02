package platform

import (
	"fmt"
	"sync"

	"github.com/1broseidon/regionswap/internal/geom"
)

// Move records one MoveResize call made against a Memory backend.
type Move struct {
	ID     WindowID
	Bounds geom.Rect
}

// Memory is an in-process Backend over a fixed set of displays and windows.
// MoveResize updates the stored window, shifting its frame by the same
// margins, and records the call.
type Memory struct {
	mu       sync.Mutex
	displays []Display
	windows  []Window
	moves    []Move
	failFor  map[WindowID]error
}

var _ Backend = (*Memory)(nil)

// NewMemory returns a backend serving the given snapshot.
func NewMemory(displays []Display, windows []Window) *Memory {
	return &Memory{
		displays: append([]Display(nil), displays...),
		windows:  append([]Window(nil), windows...),
		failFor:  make(map[WindowID]error),
	}
}

// FailMoves makes every MoveResize on id return err.
func (m *Memory) FailMoves(id WindowID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[id] = err
}

func (m *Memory) Displays() ([]Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Display(nil), m.displays...), nil
}

func (m *Memory) Windows() ([]Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Window(nil), m.windows...), nil
}

func (m *Memory) MoveResize(id WindowID, bounds geom.Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failFor[id]; err != nil {
		return err
	}
	for i := range m.windows {
		w := &m.windows[i]
		if w.ID != id {
			continue
		}
		w.Frame = geom.Rect{
			Left:   bounds.Left + (w.Frame.Left - w.Bounds.Left),
			Right:  bounds.Right + (w.Frame.Right - w.Bounds.Right),
			Top:    bounds.Top + (w.Frame.Top - w.Bounds.Top),
			Bottom: bounds.Bottom + (w.Frame.Bottom - w.Bounds.Bottom),
		}
		w.Bounds = bounds
		m.moves = append(m.moves, Move{ID: id, Bounds: bounds})
		return nil
	}
	return fmt.Errorf("window %d not found", id)
}

// Moves returns the MoveResize calls made so far.
func (m *Memory) Moves() []Move {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Move(nil), m.moves...)
}
