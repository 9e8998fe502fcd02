package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/info"
	"github.com/1broseidon/regionswap/internal/ipc"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/region"
	"github.com/1broseidon/regionswap/internal/swap"
)

func (a *app) runSwap(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() > 2 {
		return usageError("expected at most two regions, got %d", args.Len())
	}
	rawA, rawB := "0", "1"
	if args.Len() >= 1 {
		rawA = args.Get(0)
	}
	if args.Len() == 2 {
		rawB = args.Get(1)
	}
	specA, err := region.Parse(rawA)
	if err != nil {
		return usageError("region A: %v", err)
	}
	specB, err := region.Parse(rawB)
	if err != nil {
		return usageError("region B: %v", err)
	}

	if cmd.Bool("via-daemon") {
		if cmd.Bool("info") {
			return usageError("--info cannot be combined with --via-daemon")
		}
		return a.swapViaDaemon(cmd, rawA, rawB)
	}

	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := res.Config

	threshold := cfg.OverlapThreshold
	if cmd.IsSet("overlap-threshold") {
		threshold = cmd.Float64("overlap-threshold")
	}
	if !geom.ValidThreshold(threshold) {
		return usageError("--overlap-threshold must be between 0 and 1, got %g", threshold)
	}

	logger, closeLog, err := a.newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	backend, release, err := a.open()
	if err != nil {
		return err
	}
	defer release()

	if cmd.Bool("info") {
		report, err := buildReport(backend, specA, specB, cfg.Presets(), cfg.UseWorkArea, threshold)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return info.WriteJSON(a.stdout, report)
		}
		return info.Write(a.stdout, report, info.IsTerminal(a.stdout))
	}

	swapper := swap.New(backend, logger)
	swapper.SetRegions(cfg.Presets(), cfg.UseWorkArea)
	result, runErr := swapper.Run(ctx, swap.Request{
		A:         specA,
		B:         specB,
		Threshold: threshold,
		DryRun:    cmd.Bool("dry-run"),
	})
	if runErr != nil && len(result.Applied) == 0 && len(result.Failed) == 0 {
		// Nothing was attempted: resolution or snapshot failed.
		return runErr
	}

	if err := a.writeResult(cmd, result); err != nil {
		return err
	}
	return runErr
}

func (a *app) swapViaDaemon(cmd *cli.Command, rawA, rawB string) error {
	path, err := socketPath(cmd)
	if err != nil {
		return err
	}
	payload := ipc.SwapPayload{A: rawA, B: rawB, DryRun: cmd.Bool("dry-run")}
	if cmd.IsSet("overlap-threshold") {
		threshold := cmd.Float64("overlap-threshold")
		if !geom.ValidThreshold(threshold) {
			return usageError("--overlap-threshold must be between 0 and 1, got %g", threshold)
		}
		payload.OverlapThreshold = &threshold
	}

	result, swapErr := ipc.NewClient(path).Swap(payload)
	if swapErr != nil && len(result.Applied) == 0 && len(result.Failed) == 0 {
		return swapErr
	}
	if err := a.writeResult(cmd, result); err != nil {
		return err
	}
	return swapErr
}

func (a *app) writeResult(cmd *cli.Command, result swap.Result) error {
	if cmd.Bool("json") {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(a, result)
	return nil
}

func buildReport(backend platform.Backend, specA, specB region.Spec, presets map[string]region.Spec, useWorkArea bool, threshold float64) (info.Report, error) {
	displays, err := backend.Displays()
	if err != nil {
		return info.Report{}, fmt.Errorf("list displays: %w", err)
	}
	windows, err := backend.Windows()
	if err != nil {
		return info.Report{}, fmt.Errorf("list windows: %w", err)
	}
	report := info.Report{Displays: displays, Windows: windows, Threshold: threshold}

	// Overlap columns are only shown when both regions exist on this setup.
	rectA, errA := specA.Resolve(displays, presets, useWorkArea)
	rectB, errB := specB.Resolve(displays, presets, useWorkArea)
	if errA == nil && errB == nil {
		report.RegionA = &rectA
		report.RegionB = &rectB
	}
	return report, nil
}

func printResult(a *app, res swap.Result) {
	plan := res.Plan
	fmt.Fprintf(a.stdout, "A %s <-> B %s (threshold %.2f)\n", plan.RegionA, plan.RegionB, plan.Threshold)
	if len(plan.Moves) == 0 {
		fmt.Fprintln(a.stdout, "no windows to move")
		return
	}

	failed := make(map[platform.WindowID]bool, len(res.Failed))
	for _, m := range res.Failed {
		failed[m.Window.ID] = true
	}
	for _, m := range plan.Moves {
		status := "moved"
		switch {
		case plan.DryRun:
			status = "would move"
		case failed[m.Window.ID]:
			status = "failed"
		}
		fmt.Fprintf(a.stdout, "  %-10s %s->%s %s -> %s  %s\n",
			status, m.Source, otherSide(m.Source), m.OldFrame, m.NewFrame, windowLabel(m.Window))
	}
	if plan.DryRun {
		fmt.Fprintf(a.stdout, "dry run: %d planned, %d untouched\n", len(plan.Moves), plan.Untouched)
		return
	}
	fmt.Fprintf(a.stdout, "%d moved, %d failed, %d untouched\n", len(res.Applied), len(res.Failed), plan.Untouched)
}

func otherSide(source string) string {
	if source == "a" {
		return "b"
	}
	return "a"
}

func windowLabel(w platform.Window) string {
	if w.AppID == "" {
		return fmt.Sprintf("%q", w.Title)
	}
	return fmt.Sprintf("%s %q", w.AppID, w.Title)
}

