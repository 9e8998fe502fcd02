package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/palette"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/region"
	"github.com/1broseidon/regionswap/internal/swap"
)

func (a *app) pickCommand() *cli.Command {
	return &cli.Command{
		Name:  "pick",
		Usage: "choose a swap from a rofi/fuzzel/wofi/dmenu palette and run it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Value: "auto",
				Usage: "palette backend: auto, rofi, fuzzel, wofi or dmenu",
			},
		},
		Action: a.runPick,
	}
}

// pickChoices lists configured bindings, then every pair of presets, then
// every pair of monitors. requests[i] belongs to the item whose Value is i.
func pickChoices(cfg *config.Config, displays []platform.Display) ([]palette.Item, []swap.Request) {
	var items []palette.Item
	var requests []swap.Request
	add := func(label string, req swap.Request) {
		items = append(items, palette.Item{Label: label, Value: strconv.Itoa(len(requests))})
		requests = append(requests, req)
	}

	if len(cfg.Bindings) > 0 {
		items = append(items, palette.Item{Label: "Bindings", IsHeader: true})
		for _, b := range cfg.Bindings {
			add(fmt.Sprintf("%s  %s <-> %s", b.Hotkey, b.A, b.B), swap.Request{
				A: b.A, B: b.B, Threshold: b.Threshold(cfg.OverlapThreshold),
			})
		}
	}

	names := make([]string, 0, len(cfg.Regions))
	for name := range cfg.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 1 {
		items = append(items, palette.Item{Label: "Presets", IsHeader: true})
		for i := range names {
			for j := i + 1; j < len(names); j++ {
				add(fmt.Sprintf("%s <-> %s", names[i], names[j]), swap.Request{
					A: region.Named(names[i]), B: region.Named(names[j]), Threshold: cfg.OverlapThreshold,
				})
			}
		}
	}

	if len(displays) > 1 {
		items = append(items, palette.Item{Label: "Monitors", IsHeader: true})
		for i := range displays {
			for j := i + 1; j < len(displays); j++ {
				add(fmt.Sprintf("%d %s <-> %d %s", i, displays[i].Name, j, displays[j].Name), swap.Request{
					A: region.Monitor(i), B: region.Monitor(j), Threshold: cfg.OverlapThreshold,
				})
			}
		}
	}
	return items, requests
}

func (a *app) runPick(ctx context.Context, cmd *cli.Command) error {
	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := res.Config

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

	displays, err := backend.Displays()
	if err != nil {
		return fmt.Errorf("list displays: %w", err)
	}
	items, requests := pickChoices(cfg, displays)
	if len(requests) == 0 {
		return errors.New("nothing to pick: configure bindings or regions, or connect a second monitor")
	}

	menu, err := a.newPalette(cmd.String("backend"))
	if err != nil {
		return err
	}
	choice, err := menu.Show("swap", items)
	if errors.Is(err, palette.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(choice.Value)
	if err != nil || idx < 0 || idx >= len(requests) {
		return fmt.Errorf("palette returned unexpected value %q", choice.Value)
	}

	req := requests[idx]
	req.DryRun = cmd.Bool("dry-run")
	swapper := swap.New(backend, logger)
	swapper.SetRegions(cfg.Presets(), cfg.UseWorkArea)
	result, runErr := swapper.Run(ctx, req)
	if runErr != nil && len(result.Applied) == 0 && len(result.Failed) == 0 {
		return runErr
	}
	if err := a.writeResult(cmd, result); err != nil {
		return err
	}
	return runErr
}
