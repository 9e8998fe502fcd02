package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/daemon"
	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/info"
	"github.com/1broseidon/regionswap/internal/ipc"
	"github.com/1broseidon/regionswap/internal/palette"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/swap"
	"github.com/google/go-cmp/cmp"
)

type harness struct {
	app    *app
	mem    *platform.Memory
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	config string
}

func newHarness(t *testing.T, configYAML string) *harness {
	t.Helper()
	mem := platform.NewMemory(
		[]platform.Display{
			{ID: 0, Name: "left", Bounds: geom.FromXYWH(0, 0, 2560, 1440), Usable: geom.FromXYWH(0, 0, 2560, 1440)},
			{ID: 1, Name: "right", Bounds: geom.FromXYWH(2560, 0, 2560, 1440), Usable: geom.FromXYWH(2560, 0, 2560, 1440)},
		},
		[]platform.Window{
			{ID: 1, Title: "term", AppID: "kitty", Bounds: geom.FromXYWH(0, 0, 1280, 1440), Frame: geom.FromXYWH(0, 0, 1280, 1440)},
			{ID: 2, Title: "docs", AppID: "firefox", Bounds: geom.FromXYWH(2560, 0, 2560, 1440), Frame: geom.FromXYWH(2560, 0, 2560, 1440)},
		},
	)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if configYAML != "" {
		if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}

	h := &harness{mem: mem, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, config: path}
	h.app = &app{
		stdout:      h.stdout,
		stderr:      h.stderr,
		openBackend: func() (platform.Backend, error) { return mem, nil },
	}
	return h
}

// run executes the CLI and returns its exit code.
func (h *harness) run(args ...string) int {
	argv := append([]string{"regionswap", "--config", h.config}, args...)
	if err := h.app.command().Run(context.Background(), argv); err != nil {
		return h.app.reportError(err)
	}
	return 0
}

func TestSwap_DefaultMonitors(t *testing.T) {
	h := newHarness(t, "")
	if code := h.run(); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}

	want := []platform.Move{
		{ID: 1, Bounds: geom.FromXYWH(2560, 0, 1280, 1440)},
		{ID: 2, Bounds: geom.FromXYWH(0, 0, 2560, 1440)},
	}
	if diff := cmp.Diff(want, h.mem.Moves()); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(h.stdout.String(), "2 moved, 0 failed, 0 untouched") {
		t.Fatalf("unexpected output:\n%s", h.stdout)
	}
}

func TestSwap_DryRunJSON(t *testing.T) {
	h := newHarness(t, "")
	if code := h.run("--dry-run", "--json", "1", "0"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	if n := len(h.mem.Moves()); n != 0 {
		t.Fatalf("dry run issued %d moves", n)
	}

	var got struct {
		Plan struct {
			DryRun bool `json:"dry_run"`
			Moves  []struct {
				Source string `json:"source"`
			} `json:"moves"`
		} `json:"plan"`
	}
	if err := json.Unmarshal(h.stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, h.stdout)
	}
	if !got.Plan.DryRun || len(got.Plan.Moves) != 2 {
		t.Fatalf("plan = %+v, want dry run with 2 moves", got.Plan)
	}
	// Monitor 1 is region A here, so the docs window comes from A.
	if got.Plan.Moves[1].Source != "a" {
		t.Fatalf("second move source = %q, want a", got.Plan.Moves[1].Source)
	}
}

func TestSwap_PresetAndThresholdFromConfig(t *testing.T) {
	h := newHarness(t, `
overlap_threshold: 0.6
regions:
  left_half: 0,0,1280,1440
  right_half: 2560,0,3840,1440
`)
	if code := h.run("left_half", "right_half"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	// Only half of docs lies in right_half, below the 0.6 threshold.
	want := []platform.Move{
		{ID: 1, Bounds: geom.FromXYWH(2560, 0, 1280, 1440)},
	}
	if diff := cmp.Diff(want, h.mem.Moves()); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestSwap_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad region", []string{"0,0,10"}, "region A"},
		{"too many regions", []string{"0", "1", "2"}, "at most two regions"},
		{"threshold range", []string{"--overlap-threshold", "1.5"}, "between 0 and 1"},
		{"threshold NaN", []string{"--overlap-threshold", "NaN"}, "between 0 and 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			if code := h.run(tt.args...); code != exitUsage {
				t.Fatalf("exit %d, want %d", code, exitUsage)
			}
			if !strings.Contains(h.stderr.String(), tt.want) {
				t.Fatalf("stderr %q does not mention %q", h.stderr, tt.want)
			}
			if n := len(h.mem.Moves()); n != 0 {
				t.Fatalf("usage error issued %d moves", n)
			}
		})
	}
}

func TestSwap_MissingMonitorIsRuntimeError(t *testing.T) {
	h := newHarness(t, "")
	if code := h.run("0", "4"); code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
	if !strings.Contains(h.stderr.String(), "monitor 4 does not exist") {
		t.Fatalf("unexpected stderr: %s", h.stderr)
	}
}

func TestInfo_JSON(t *testing.T) {
	h := newHarness(t, "")
	if code := h.run("--info", "--json"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	var report info.Report
	if err := json.Unmarshal(h.stdout.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Displays) != 2 || len(report.Windows) != 2 {
		t.Fatalf("report has %d displays and %d windows", len(report.Displays), len(report.Windows))
	}
	if report.RegionA == nil || *report.RegionA != geom.FromXYWH(0, 0, 2560, 1440) {
		t.Fatalf("region A = %v", report.RegionA)
	}
	if n := len(h.mem.Moves()); n != 0 {
		t.Fatalf("--info issued %d moves", n)
	}
}

func TestInfo_PlainTable(t *testing.T) {
	h := newHarness(t, "")
	if code := h.run("--info"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	out := h.stdout.String()
	for _, want := range []string{"left", "right", "kitty", "docs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	h := newHarness(t, "overlap_threshold: 0.6\n")
	if code := h.run("config", "validate"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "config: ok" {
		t.Fatalf("stdout = %q", got)
	}

	bad := newHarness(t, "overlap_threshold: 2\n")
	if code := bad.run("config", "validate"); code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
	if !strings.Contains(bad.stderr.String(), "overlap_threshold") {
		t.Fatalf("stderr does not name the key: %s", bad.stderr)
	}
}

func TestConfigExplain(t *testing.T) {
	h := newHarness(t, "use_work_area: true\n")
	if code := h.run("config", "explain", "use_work_area"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "value:\ntrue") || !strings.Contains(out, ":1:") {
		t.Fatalf("unexpected explain output:\n%s", out)
	}

	if code := h.run("config", "explain"); code != exitUsage {
		t.Fatalf("explain without path: exit %d, want %d", code, exitUsage)
	}
}

func TestStatus_NoDaemon(t *testing.T) {
	h := newHarness(t, "")
	socket := filepath.Join(t.TempDir(), "missing.sock")
	if code := h.run("--socket", socket, "status"); code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
	if !strings.Contains(h.stderr.String(), "is the daemon running") {
		t.Fatalf("unexpected stderr: %s", h.stderr)
	}
}

func TestSwap_ViaDaemon(t *testing.T) {
	h := newHarness(t, "")
	dir, err := os.MkdirTemp("", "rscli")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	socket := filepath.Join(dir, "s.sock")

	d := daemon.New(daemon.Options{
		Swapper: swap.New(h.mem, nil),
		Load: func() (*config.LoadResult, error) {
			return &config.LoadResult{Config: config.DefaultConfig()}, nil
		},
		Binder: nopBinder{},
	})
	if err := d.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	srv := ipc.NewServer(socket, d, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	// The CLI never opens the backend itself in this mode.
	h.app.openBackend = func() (platform.Backend, error) {
		t.Fatalf("backend opened")
		return nil, nil
	}
	if code := h.run("--socket", socket, "--via-daemon", "0", "1"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	if n := len(h.mem.Moves()); n != 2 {
		t.Fatalf("daemon issued %d moves, want 2", n)
	}
	if !strings.Contains(h.stdout.String(), "2 moved") {
		t.Fatalf("unexpected output:\n%s", h.stdout)
	}

	h.stdout.Reset()
	if code := h.run("--socket", socket, "status"); code != 0 {
		t.Fatalf("status exit %d, stderr: %s", code, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "last swap: 0 <-> 1 via ipc") {
		t.Fatalf("unexpected status output:\n%s", h.stdout)
	}
}

type nopBinder struct{}

func (nopBinder) Bind([]config.Binding, func(config.Binding)) error { return nil }
func (nopBinder) Unbind()                                          {}

type scriptedPalette struct {
	pick   string
	shown  []palette.Item
	cancel bool
}

func (p *scriptedPalette) Show(_ string, items []palette.Item) (palette.Item, error) {
	p.shown = items
	if p.cancel {
		return palette.Item{}, palette.ErrCancelled
	}
	for _, it := range items {
		if it.Label == p.pick {
			return it, nil
		}
	}
	return palette.Item{}, palette.ErrCancelled
}

func TestPick_RunsChosenSwap(t *testing.T) {
	h := newHarness(t, `
regions:
  left_half: 0,0,1280,1440
  right_half: 2560,0,3840,1440
bindings:
  - hotkey: Mod4-s
    a: "0"
    b: "1"
`)
	menu := &scriptedPalette{pick: "left_half <-> right_half"}
	h.app.newPalette = func(string) (palette.Backend, error) { return menu, nil }

	if code := h.run("pick"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}

	var labels []string
	for _, it := range menu.shown {
		labels = append(labels, it.Label)
	}
	wantLabels := []string{
		"Bindings",
		"Mod4-s  0 <-> 1",
		"Presets",
		"left_half <-> right_half",
		"Monitors",
		"0 left <-> 1 right",
	}
	if diff := cmp.Diff(wantLabels, labels); diff != "" {
		t.Fatalf("palette items mismatch (-want +got):\n%s", diff)
	}

	want := []platform.Move{{ID: 1, Bounds: geom.FromXYWH(2560, 0, 1280, 1440)}}
	if diff := cmp.Diff(want, h.mem.Moves()); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestPick_CancelDoesNothing(t *testing.T) {
	h := newHarness(t, "")
	h.app.newPalette = func(string) (palette.Backend, error) { return &scriptedPalette{cancel: true}, nil }

	if code := h.run("pick"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	if n := len(h.mem.Moves()); n != 0 {
		t.Fatalf("cancelled pick issued %d moves", n)
	}
}

func TestConfigValidate_DefaultLocation(t *testing.T) {
	h := newHarness(t, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("REGIONSWAP_CONFIG", "")

	run := func() int {
		err := h.app.command().Run(context.Background(), []string{"regionswap", "config", "validate"})
		if err != nil {
			return h.app.reportError(err)
		}
		return 0
	}

	if code := run(); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	if got := h.stdout.String(); got != "config: ok (no file, using defaults)\n" {
		t.Fatalf("stdout = %q", got)
	}

	dir := filepath.Join(home, ".config", "regionswap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("overlap_threshold: 0.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	h.stdout.Reset()
	if code := run(); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, h.stderr)
	}
	if got := h.stdout.String(); got != "config: ok\n" {
		t.Fatalf("stdout = %q", got)
	}
}
