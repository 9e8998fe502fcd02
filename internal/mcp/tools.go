package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/region"
	"github.com/1broseidon/regionswap/internal/swap"
)

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	displays, err := s.backend.Displays()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("list displays: %w", err)
	}
	if displays == nil {
		displays = []platform.Display{}
	}
	return nil, ListDisplaysOutput{Displays: displays}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	var filter *geom.Rect
	threshold := s.threshold(args.OverlapThreshold)
	if args.Region != "" {
		if !geom.ValidThreshold(threshold) {
			return nil, ListWindowsOutput{}, fmt.Errorf("%w, got %g", swap.ErrInvalidThreshold, threshold)
		}
		r, err := s.resolve(args.Region)
		if err != nil {
			return nil, ListWindowsOutput{}, err
		}
		filter = &r
	}

	windows, err := s.backend.Windows()
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list windows: %w", err)
	}

	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		info := WindowInfo{Window: w}
		if filter != nil {
			overlap := geom.OverlapFraction(w.Frame, *filter)
			if overlap < threshold {
				continue
			}
			info.Overlap = &overlap
		}
		out.Windows = append(out.Windows, info)
	}
	return nil, out, nil
}

func (s *Server) handleSwapRegions(ctx context.Context, _ *mcpsdk.CallToolRequest, args SwapRegionsInput) (*mcpsdk.CallToolResult, SwapRegionsOutput, error) {
	a, err := region.Parse(args.A)
	if err != nil {
		return nil, SwapRegionsOutput{}, fmt.Errorf("a: %w", err)
	}
	b, err := region.Parse(args.B)
	if err != nil {
		return nil, SwapRegionsOutput{}, fmt.Errorf("b: %w", err)
	}

	req := swap.Request{
		A:         a,
		B:         b,
		Threshold: s.threshold(args.OverlapThreshold),
		DryRun:    args.DryRun,
	}
	plan, err := s.swapper.Plan(ctx, req)
	if err != nil {
		return nil, SwapRegionsOutput{}, err
	}
	res, applyErr := s.swapper.Apply(ctx, plan)

	applied := make(map[platform.WindowID]bool, len(res.Applied))
	for _, m := range res.Applied {
		applied[m.Window.ID] = true
	}

	out := SwapRegionsOutput{
		RegionA:   plan.RegionA,
		RegionB:   plan.RegionB,
		Threshold: plan.Threshold,
		DryRun:    plan.DryRun,
		Moves:     make([]MoveInfo, 0, len(plan.Moves)),
		Untouched: plan.Untouched,
	}
	for _, m := range plan.Moves {
		out.Moves = append(out.Moves, MoveInfo{
			WindowID: m.Window.ID,
			Title:    m.Window.Title,
			Source:   m.Source,
			OldFrame: m.OldFrame,
			NewFrame: m.NewFrame,
			Applied:  applied[m.Window.ID],
		})
	}
	if applyErr != nil {
		out.Error = applyErr.Error()
	}

	s.logger.Info("mcp swap_regions",
		"a", args.A,
		"b", args.B,
		"dry_run", args.DryRun,
		"moves", len(out.Moves),
		"applied", len(res.Applied),
	)
	return nil, out, nil
}

func (s *Server) threshold(override *float64) float64 {
	if override != nil {
		return *override
	}
	return s.config.OverlapThreshold
}

func (s *Server) resolve(input string) (geom.Rect, error) {
	spec, err := region.Parse(input)
	if err != nil {
		return geom.Rect{}, err
	}
	displays, err := s.backend.Displays()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("list displays: %w", err)
	}
	return spec.Resolve(displays, s.config.Presets(), s.config.UseWorkArea)
}
