package platform

import (
	"errors"
	"testing"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/google/go-cmp/cmp"
)

func TestCollector_KeepsAcceptedInOrder(t *testing.T) {
	c := NewCollector(func(n int) bool { return n%2 == 0 })
	for i := 0; i < 6; i++ {
		if !c.Add(i) {
			t.Fatalf("Add(%d) returned false; enumeration would stop", i)
		}
	}
	if diff := cmp.Diff([]int{0, 2, 4}, c.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestCollector_NilFilterKeepsAll(t *testing.T) {
	c := NewCollector[string](nil)
	c.Add("a")
	c.Add("b")
	if got := len(c.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
}

func TestMemory_MoveResizeKeepsFrameMargins(t *testing.T) {
	m := NewMemory(nil, []Window{{
		ID:     7,
		Bounds: geom.Rect{Left: 93, Right: 1007, Top: 100, Bottom: 1007},
		Frame:  geom.Rect{Left: 100, Right: 1000, Top: 100, Bottom: 1000},
	}})

	target := geom.Rect{Left: 2553, Right: 3467, Top: 0, Bottom: 507}
	if err := m.MoveResize(7, target); err != nil {
		t.Fatalf("MoveResize: %v", err)
	}

	windows, _ := m.Windows()
	want := geom.Rect{Left: 2560, Right: 3460, Top: 0, Bottom: 500}
	if windows[0].Frame != want {
		t.Fatalf("frame = %v, want %v", windows[0].Frame, want)
	}
	if windows[0].Bounds != target {
		t.Fatalf("bounds = %v, want %v", windows[0].Bounds, target)
	}
	if diff := cmp.Diff([]Move{{ID: 7, Bounds: target}}, m.Moves()); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_MoveResizeErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMemory(nil, []Window{{ID: 1, Frame: geom.FromXYWH(0, 0, 10, 10), Bounds: geom.FromXYWH(0, 0, 10, 10)}})
	m.FailMoves(1, boom)

	if err := m.MoveResize(1, geom.FromXYWH(5, 5, 10, 10)); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if err := m.MoveResize(2, geom.FromXYWH(5, 5, 10, 10)); err == nil {
		t.Fatalf("expected error for unknown window")
	}
	if len(m.Moves()) != 0 {
		t.Fatalf("failed moves must not be recorded")
	}
}

func TestMemory_SnapshotsAreCopies(t *testing.T) {
	m := NewMemory([]Display{{ID: 0, Name: "a"}}, nil)
	ds, _ := m.Displays()
	ds[0].Name = "changed"
	again, _ := m.Displays()
	if again[0].Name != "a" {
		t.Fatalf("Displays must return a copy")
	}
}
