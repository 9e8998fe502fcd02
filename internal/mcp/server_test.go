package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/region"
	"github.com/google/go-cmp/cmp"
)

func testServer(t *testing.T) (*Server, *platform.Memory) {
	t.Helper()
	mem := platform.NewMemory(
		[]platform.Display{
			{ID: 0, Name: "DP-1", Bounds: geom.FromXYWH(0, 0, 1920, 1080), Usable: geom.FromXYWH(0, 0, 1920, 1080)},
			{ID: 1, Name: "DP-2", Bounds: geom.FromXYWH(1920, 0, 1920, 1080), Usable: geom.FromXYWH(1920, 0, 1920, 1080)},
		},
		[]platform.Window{
			{ID: 10, Title: "editor", Bounds: geom.FromXYWH(0, 0, 1920, 1080), Frame: geom.FromXYWH(0, 0, 1920, 1080)},
			{ID: 11, Title: "browser", Bounds: geom.FromXYWH(1920, 0, 960, 1080), Frame: geom.FromXYWH(1920, 0, 960, 1080)},
			{ID: 12, Title: "straddler", Bounds: geom.FromXYWH(1420, 0, 1000, 500), Frame: geom.FromXYWH(1420, 0, 1000, 500)},
		},
	)
	cfg := config.DefaultConfig()
	cfg.Regions["right"] = region.Monitor(1)
	return NewServer(mem, cfg, nil), mem
}

func TestListDisplays(t *testing.T) {
	s, _ := testServer(t)
	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list_displays: %v", err)
	}
	var names []string
	for _, d := range out.Displays {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"DP-1", "DP-2"}, names); diff != "" {
		t.Fatalf("display names mismatch (-want +got):\n%s", diff)
	}
}

func TestListWindows_RegionFilter(t *testing.T) {
	s, _ := testServer(t)

	_, all, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(all.Windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(all.Windows))
	}
	if all.Windows[0].Overlap != nil {
		t.Fatalf("unfiltered listing should not report overlap")
	}

	_, right, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Region: "right"})
	if err != nil {
		t.Fatalf("list_windows right: %v", err)
	}
	if len(right.Windows) != 1 || right.Windows[0].Window.ID != 11 {
		t.Fatalf("filtered windows = %+v, want only 11", right.Windows)
	}
	if got := *right.Windows[0].Overlap; got != 1 {
		t.Fatalf("overlap = %v, want 1", got)
	}

	low := 0.5
	_, loose, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Region: "0", OverlapThreshold: &low})
	if err != nil {
		t.Fatalf("list_windows 0: %v", err)
	}
	if len(loose.Windows) != 2 {
		t.Fatalf("got %d windows at threshold 0.5, want 2", len(loose.Windows))
	}
}

func TestListWindows_UnknownRegion(t *testing.T) {
	s, _ := testServer(t)
	_, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Region: "nowhere"})
	if err == nil || !strings.Contains(err.Error(), "nowhere") {
		t.Fatalf("expected unknown region error, got %v", err)
	}
}

func TestSwapRegions_Applies(t *testing.T) {
	s, mem := testServer(t)
	_, out, err := s.handleSwapRegions(context.Background(), nil, SwapRegionsInput{A: "0", B: "right"})
	if err != nil {
		t.Fatalf("swap_regions: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected move error: %s", out.Error)
	}
	if len(out.Moves) != 2 || out.Untouched != 1 {
		t.Fatalf("moves=%d untouched=%d, want 2 and 1", len(out.Moves), out.Untouched)
	}
	for _, m := range out.Moves {
		if !m.Applied {
			t.Fatalf("move of window %d not applied", m.WindowID)
		}
	}

	want := []platform.Move{
		{ID: 10, Bounds: geom.FromXYWH(1920, 0, 1920, 1080)},
		{ID: 11, Bounds: geom.FromXYWH(0, 0, 960, 1080)},
	}
	if diff := cmp.Diff(want, mem.Moves()); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestSwapRegions_DryRun(t *testing.T) {
	s, mem := testServer(t)
	_, out, err := s.handleSwapRegions(context.Background(), nil, SwapRegionsInput{A: "0", B: "1", DryRun: true})
	if err != nil {
		t.Fatalf("swap_regions: %v", err)
	}
	if !out.DryRun || len(out.Moves) != 2 {
		t.Fatalf("dry_run=%v moves=%d, want true and 2", out.DryRun, len(out.Moves))
	}
	for _, m := range out.Moves {
		if m.Applied {
			t.Fatalf("dry run applied window %d", m.WindowID)
		}
	}
	if n := len(mem.Moves()); n != 0 {
		t.Fatalf("dry run issued %d moves", n)
	}
}

func TestSwapRegions_ReportsFailedMoves(t *testing.T) {
	s, mem := testServer(t)
	mem.FailMoves(10, errors.New("BadWindow"))

	_, out, err := s.handleSwapRegions(context.Background(), nil, SwapRegionsInput{A: "0", B: "1"})
	if err != nil {
		t.Fatalf("swap_regions: %v", err)
	}
	if !strings.Contains(out.Error, "BadWindow") {
		t.Fatalf("error = %q, want it to mention BadWindow", out.Error)
	}
	applied := map[platform.WindowID]bool{}
	for _, m := range out.Moves {
		applied[m.WindowID] = m.Applied
	}
	if applied[10] || !applied[11] {
		t.Fatalf("applied = %v, want 10 failed and 11 applied", applied)
	}
}

func TestSwapRegions_BadInput(t *testing.T) {
	s, _ := testServer(t)
	bad := 1.5
	tests := []struct {
		name string
		in   SwapRegionsInput
		want string
	}{
		{"bad a", SwapRegionsInput{A: "1,2,3", B: "1"}, "a:"},
		{"bad b", SwapRegionsInput{A: "0", B: "?"}, "b:"},
		{"missing monitor", SwapRegionsInput{A: "0", B: "5"}, "monitor 5"},
		{"threshold", SwapRegionsInput{A: "0", B: "1", OverlapThreshold: &bad}, "threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleSwapRegions(context.Background(), nil, tt.in)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
