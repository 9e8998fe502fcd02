package swap

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/region"
	"github.com/google/go-cmp/cmp"
)

func TestAdjustBounds_PreservesMargins(t *testing.T) {
	oldBounds := geom.Rect{Left: 93, Right: 1007, Top: 100, Bottom: 1007}
	oldFrame := geom.Rect{Left: 100, Right: 1000, Top: 100, Bottom: 1000}
	newFrame := geom.Rect{Left: 2560, Right: 3460, Top: 0, Bottom: 900}

	got, ok := AdjustBounds(oldBounds, oldFrame, newFrame)
	if !ok {
		t.Fatalf("expected a move")
	}
	want := geom.Rect{Left: 2553, Right: 3467, Top: 0, Bottom: 907}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAdjustBounds_UnchangedFrameSkips(t *testing.T) {
	frame := geom.FromXYWH(0, 0, 100, 100)
	if _, ok := AdjustBounds(frame, frame, frame); ok {
		t.Fatalf("unchanged frame must not produce a move")
	}
}

func twoQHD() []platform.Display {
	return []platform.Display{
		{ID: 0, Name: "DP-1", Bounds: geom.FromXYWH(0, 0, 2560, 1440), Usable: geom.FromXYWH(0, 0, 2560, 1400)},
		{ID: 1, Name: "DP-2", Bounds: geom.FromXYWH(2560, 0, 2560, 1440), Usable: geom.FromXYWH(2560, 0, 2560, 1440)},
	}
}

func win(id platform.WindowID, frame geom.Rect) platform.Window {
	return platform.Window{
		ID:     id,
		Title:  "w",
		Frame:  frame,
		Bounds: geom.Rect{Left: frame.Left - 7, Right: frame.Right + 7, Top: frame.Top, Bottom: frame.Bottom + 7},
	}
}

func TestSwapper_RunMovesBothWays(t *testing.T) {
	mem := platform.NewMemory(twoQHD(), []platform.Window{
		win(1, geom.FromXYWH(100, 100, 800, 600)),
		win(2, geom.FromXYWH(2660, 200, 800, 600)),
	})
	s := New(mem, nil)

	res, err := s.Run(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(1), Threshold: geom.DefaultOverlapThreshold})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("expected 2 applied moves, got %d", len(res.Applied))
	}

	got, _ := mem.Windows()
	wantFrames := map[platform.WindowID]geom.Rect{
		1: geom.FromXYWH(2660, 100, 800, 600),
		2: geom.FromXYWH(100, 200, 800, 600),
	}
	for _, w := range got {
		if w.Frame != wantFrames[w.ID] {
			t.Fatalf("window %d frame = %v, want %v", w.ID, w.Frame, wantFrames[w.ID])
		}
	}
	if res.Applied[0].Source != "a" || res.Applied[1].Source != "b" {
		t.Fatalf("unexpected sources: %q, %q", res.Applied[0].Source, res.Applied[1].Source)
	}
}

func TestSwapper_PlanSkipsUnaffectedWindows(t *testing.T) {
	displays := append(twoQHD(), platform.Display{ID: 2, Bounds: geom.FromXYWH(5120, 0, 1920, 1080)})
	mem := platform.NewMemory(displays, []platform.Window{
		win(1, geom.FromXYWH(100, 100, 800, 600)),
		win(3, geom.FromXYWH(5200, 100, 800, 600)),
	})
	s := New(mem, nil)

	plan, err := s.Plan(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(1), Threshold: 0.8})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Moves) != 1 || plan.Moves[0].Window.ID != 1 {
		t.Fatalf("expected only window 1 to move, got %+v", plan.Moves)
	}
	if plan.Untouched != 1 {
		t.Fatalf("expected 1 untouched window, got %d", plan.Untouched)
	}
	if len(mem.Moves()) != 0 {
		t.Fatalf("Plan must not move windows")
	}
}

func TestSwapper_DryRunIssuesNothing(t *testing.T) {
	mem := platform.NewMemory(twoQHD(), []platform.Window{win(1, geom.FromXYWH(100, 100, 800, 600))})
	s := New(mem, nil)

	res, err := s.Run(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(1), Threshold: 0.8, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Plan.Moves) != 1 {
		t.Fatalf("expected a planned move")
	}
	if len(res.Applied) != 0 || len(mem.Moves()) != 0 {
		t.Fatalf("dry run must not move windows")
	}
}

func TestSwapper_ContinuesPastFailures(t *testing.T) {
	mem := platform.NewMemory(twoQHD(), []platform.Window{
		win(1, geom.FromXYWH(100, 100, 800, 600)),
		win(2, geom.FromXYWH(2660, 200, 800, 600)),
	})
	boom := errors.New("access denied")
	mem.FailMoves(1, boom)
	s := New(mem, nil)

	res, err := s.Run(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(1), Threshold: 0.8})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap %v, got %v", boom, err)
	}
	if len(res.Applied) != 1 || res.Applied[0].Window.ID != 2 {
		t.Fatalf("expected window 2 to still move, got %+v", res.Applied)
	}
	if len(res.Failed) != 1 || res.Failed[0].Window.ID != 1 {
		t.Fatalf("expected window 1 to be reported failed, got %+v", res.Failed)
	}
}

func TestSwapper_CancelledContextStopsApply(t *testing.T) {
	mem := platform.NewMemory(twoQHD(), []platform.Window{win(1, geom.FromXYWH(100, 100, 800, 600))})
	s := New(mem, nil)
	plan, err := s.Plan(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(1), Threshold: 0.8})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Apply(ctx, plan); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(mem.Moves()) != 0 {
		t.Fatalf("no move may be issued after cancellation")
	}
}

func TestSwapper_PlanOverlappingRegionsFavorA(t *testing.T) {
	// Window 1 lies entirely in both regions; window 2 only in B.
	mem := platform.NewMemory(twoQHD(), []platform.Window{
		win(1, geom.Rect{Left: 500, Right: 1000, Top: 0, Bottom: 1000}),
		win(2, geom.Rect{Left: 1100, Right: 1500, Top: 0, Bottom: 1000}),
	})
	s := New(mem, nil)

	a := region.Rect(geom.Rect{Left: 0, Right: 1000, Top: 0, Bottom: 1000})
	b := region.Rect(geom.Rect{Left: 500, Right: 1500, Top: 0, Bottom: 1000})
	plan, err := s.Plan(context.Background(), Request{A: a, B: b, Threshold: geom.DefaultOverlapThreshold})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	type moved struct {
		ID     platform.WindowID
		Source string
		Frame  geom.Rect
	}
	var got []moved
	for _, m := range plan.Moves {
		got = append(got, moved{ID: m.Window.ID, Source: m.Source, Frame: m.NewFrame})
	}
	want := []moved{
		{ID: 1, Source: "a", Frame: geom.Rect{Left: 1000, Right: 1500, Top: 0, Bottom: 1000}},
		{ID: 2, Source: "b", Frame: geom.Rect{Left: 600, Right: 1000, Top: 0, Bottom: 1000}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestSwapper_RejectsBadThreshold(t *testing.T) {
	s := New(platform.NewMemory(twoQHD(), nil), nil)
	for _, th := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := s.Plan(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(1), Threshold: th})
		if !errors.Is(err, ErrInvalidThreshold) {
			t.Fatalf("threshold %g: expected ErrInvalidThreshold, got %v", th, err)
		}
	}
}

func TestSwapper_ResolveErrorsNameTheRegion(t *testing.T) {
	s := New(platform.NewMemory(twoQHD(), nil), nil)
	_, err := s.Plan(context.Background(), Request{A: region.Monitor(0), B: region.Monitor(5), Threshold: 0.8})
	if err == nil || !strings.Contains(err.Error(), "region B") {
		t.Fatalf("expected region B error, got %v", err)
	}
}

func TestSwapper_PresetsAndWorkArea(t *testing.T) {
	mem := platform.NewMemory(twoQHD(), []platform.Window{win(1, geom.FromXYWH(0, 0, 1280, 1400))})
	s := New(mem, nil)
	s.SetRegions(map[string]region.Spec{
		"right": region.Rect(geom.FromXYWH(2560, 0, 2560, 1440)),
	}, true)

	plan, err := s.Plan(context.Background(), Request{A: region.Monitor(0), B: region.Named("right"), Threshold: 0.8})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.RegionA != geom.FromXYWH(0, 0, 2560, 1400) {
		t.Fatalf("expected work area for region A, got %v", plan.RegionA)
	}
	want := []geom.Rect{{Left: 2560, Right: 3840, Top: 0, Bottom: 1440}}
	var got []geom.Rect
	for _, m := range plan.Moves {
		got = append(got, m.NewFrame)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("new frames mismatch (-want +got):\n%s", diff)
	}
}
