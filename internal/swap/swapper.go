// Package swap exchanges the windows of two desktop regions: it snapshots the
// backend, plans every window's new frame and applies the moves.
package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/region"
)

// ErrInvalidThreshold is returned for overlap thresholds outside [0,1].
var ErrInvalidThreshold = errors.New("overlap threshold must be between 0 and 1")

// Request describes one swap.
type Request struct {
	A         region.Spec
	B         region.Spec
	Threshold float64
	DryRun    bool
}

// Move is a planned change to one window.
type Move struct {
	Window    platform.Window `json:"window"`
	Source    string          `json:"source"`
	OldFrame  geom.Rect       `json:"old_frame"`
	NewFrame  geom.Rect       `json:"new_frame"`
	NewBounds geom.Rect       `json:"new_bounds"`
}

// Plan is the outcome of resolving a Request against a single snapshot.
type Plan struct {
	RegionA   geom.Rect `json:"region_a"`
	RegionB   geom.Rect `json:"region_b"`
	Threshold float64   `json:"threshold"`
	DryRun    bool      `json:"dry_run"`
	Moves     []Move    `json:"moves"`
	Untouched int       `json:"untouched"`
}

// Result reports what Apply did.
type Result struct {
	Plan    Plan   `json:"plan"`
	Applied []Move `json:"applied"`
	Failed  []Move `json:"failed,omitempty"`
}

// Swapper plans and applies region swaps against a backend.
type Swapper struct {
	backend platform.Backend
	logger  *slog.Logger

	mu          sync.RWMutex
	presets     map[string]region.Spec
	useWorkArea bool
}

// New returns a Swapper. A nil logger discards output.
func New(backend platform.Backend, logger *slog.Logger) *Swapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Swapper{backend: backend, logger: logger}
}

// SetRegions replaces the named presets and the work-area preference used to
// resolve region specs. It is safe to call while swaps run.
func (s *Swapper) SetRegions(presets map[string]region.Spec, useWorkArea bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = presets
	s.useWorkArea = useWorkArea
}

// Plan takes one snapshot of displays and windows and computes the moves req
// would make. Windows whose frame would not change are left out.
func (s *Swapper) Plan(ctx context.Context, req Request) (Plan, error) {
	if !geom.ValidThreshold(req.Threshold) {
		return Plan{}, fmt.Errorf("%w, got %g", ErrInvalidThreshold, req.Threshold)
	}
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}

	displays, err := s.backend.Displays()
	if err != nil {
		return Plan{}, fmt.Errorf("list displays: %w", err)
	}

	s.mu.RLock()
	presets, useWorkArea := s.presets, s.useWorkArea
	s.mu.RUnlock()

	regionA, err := req.A.Resolve(displays, presets, useWorkArea)
	if err != nil {
		return Plan{}, fmt.Errorf("region A: %w", err)
	}
	regionB, err := req.B.Resolve(displays, presets, useWorkArea)
	if err != nil {
		return Plan{}, fmt.Errorf("region B: %w", err)
	}

	windows, err := s.backend.Windows()
	if err != nil {
		return Plan{}, fmt.Errorf("list windows: %w", err)
	}

	plan := Plan{
		RegionA:   regionA,
		RegionB:   regionB,
		Threshold: req.Threshold,
		DryRun:    req.DryRun,
	}
	for _, w := range windows {
		from, to, member := geom.Membership(regionA, regionB, w.Frame, req.Threshold)
		if !member {
			plan.Untouched++
			continue
		}
		newFrame := geom.Relocate(from, to, w.Frame)
		newBounds, ok := AdjustBounds(w.Bounds, w.Frame, newFrame)
		if !ok {
			plan.Untouched++
			continue
		}
		source := "b"
		if from == regionA {
			source = "a"
		}
		plan.Moves = append(plan.Moves, Move{
			Window:    w,
			Source:    source,
			OldFrame:  w.Frame,
			NewFrame:  newFrame,
			NewBounds: newBounds,
		})
	}

	s.logger.Debug("swap planned",
		"region_a", regionA,
		"region_b", regionB,
		"threshold", req.Threshold,
		"moves", len(plan.Moves),
		"untouched", plan.Untouched,
	)
	return plan, nil
}

// Apply issues the moves of plan. A failed move is logged and does not stop
// the others; all failures are returned joined. Cancelling ctx stops before
// the next move. A dry-run plan issues nothing.
func (s *Swapper) Apply(ctx context.Context, plan Plan) (Result, error) {
	res := Result{Plan: plan}
	if plan.DryRun {
		return res, nil
	}

	var errs []error
	for _, m := range plan.Moves {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.backend.MoveResize(m.Window.ID, m.NewBounds); err != nil {
			s.logger.Warn("move failed",
				"window", m.Window.ID,
				"title", m.Window.Title,
				"bounds", m.NewBounds,
				"error", err,
			)
			res.Failed = append(res.Failed, m)
			errs = append(errs, fmt.Errorf("window %d (%s): %w", m.Window.ID, m.Window.Title, err))
			continue
		}
		res.Applied = append(res.Applied, m)
	}

	s.logger.Info("swap applied", "applied", len(res.Applied), "failed", len(res.Failed))
	return res, errors.Join(errs...)
}

// Run plans and applies req.
func (s *Swapper) Run(ctx context.Context, req Request) (Result, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return s.Apply(ctx, plan)
}
