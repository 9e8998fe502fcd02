// Package daemon keeps global swap hotkeys bound for the life of a session
// and rebinds them when the config file changes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/ipc"
	"github.com/1broseidon/regionswap/internal/region"
	"github.com/1broseidon/regionswap/internal/runtimepath"
	"github.com/1broseidon/regionswap/internal/swap"
)

// Binder grabs hotkeys for bindings.
type Binder interface {
	Bind(bindings []config.Binding, run func(config.Binding)) error
	Unbind()
}

// EventLoop dispatches window-system events until Quit.
type EventLoop interface {
	EventLoop()
	Quit()
}

// Options configure a Daemon.
type Options struct {
	Swapper *swap.Swapper
	Binder  Binder
	Loop    EventLoop
	// Load returns the current config; it is called at start and on reload.
	Load func() (*config.LoadResult, error)
	// ConfigPath is watched even when it does not exist yet.
	ConfigPath string
	// PidFile defaults to the runtime-dir pid file. "-" disables it.
	PidFile string
	// SocketPath is the control socket, defaulting to the runtime dir. "-"
	// disables it.
	SocketPath string
	Debounce   time.Duration
	Logger     *slog.Logger
}

// Daemon owns the hotkey bindings.
type Daemon struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	cfg      *config.Config
	files    []string
	ctx      context.Context
	started  time.Time
	lastSwap *ipc.SwapSummary

	// reloaded is signalled after every successful Reload so Run can
	// re-arm the file watcher when the include set changed.
	reloaded chan struct{}
}

var _ ipc.Handler = (*Daemon)(nil)

// New returns a daemon; call Run to start it.
func New(opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		opts:     opts,
		logger:   logger,
		ctx:      context.Background(),
		started:  time.Now(),
		reloaded: make(chan struct{}, 1),
	}
}

// Run binds the configured hotkeys and serves them until ctx is cancelled,
// SIGINT/SIGTERM arrives or the event loop exits. SIGHUP and edits to the
// config file trigger a reload.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	release, err := d.acquirePidFile()
	if err != nil {
		return err
	}
	defer release()

	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()

	if err := d.Reload(); err != nil {
		return err
	}
	defer d.opts.Binder.Unbind()

	stopControl, err := d.serveControl()
	if err != nil {
		return err
	}
	defer stopControl()

	w := d.watch(ctx)
	defer func() { w.stop() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.logger.Info("entering event loop")
		d.opts.Loop.EventLoop()
	}()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down")
			d.opts.Loop.Quit()
			<-loopDone
			return nil
		case <-loopDone:
			return errors.New("event loop exited")
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				d.logger.Info("received SIGHUP, reloading config")
				d.reloadAndLog()
				continue
			}
			d.logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-w.changes:
			d.logger.Info("config file changed, reloading")
			d.reloadAndLog()
		case <-d.reloaded:
			if files := d.watchList(); !slices.Equal(files, w.files) {
				d.logger.Info("config file set changed, re-arming watcher", "files", len(files))
				w.stop()
				w = d.watch(ctx)
			}
		}
	}
}

// Reload loads the config and rebinds hotkeys. On error the previous
// bindings stay active.
func (d *Daemon) Reload() error {
	res, err := d.opts.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config

	d.opts.Swapper.SetRegions(cfg.Presets(), cfg.UseWorkArea)

	d.mu.Lock()
	d.cfg = cfg
	d.files = res.Files
	d.mu.Unlock()

	if len(cfg.Bindings) == 0 {
		d.logger.Warn("no bindings configured; add entries under bindings: to use the daemon")
	}
	if err := d.opts.Binder.Bind(cfg.Bindings, d.trigger); err != nil {
		d.logger.Warn("some hotkeys could not be registered", "error", err)
	}

	select {
	case d.reloaded <- struct{}{}:
	default:
	}
	return nil
}

func (d *Daemon) reloadAndLog() {
	if err := d.Reload(); err != nil {
		d.logger.Error("config reload failed; keeping previous bindings", "error", err)
		return
	}
	d.logger.Info("config reloaded")
}

// trigger runs the swap for b. It is called on the event loop goroutine.
func (d *Daemon) trigger(b config.Binding) {
	d.mu.Lock()
	cfg, ctx := d.cfg, d.ctx
	d.mu.Unlock()

	threshold := b.Threshold(cfg.OverlapThreshold)
	res, err := d.opts.Swapper.Run(ctx, swap.Request{A: b.A, B: b.B, Threshold: threshold})
	d.recordSwap(b.Hotkey, b.A, b.B, res, err)
	if err != nil {
		d.logger.Error("swap failed", "hotkey", b.Hotkey, "error", err)
		return
	}
	d.logger.Info("swap done", "hotkey", b.Hotkey, "moved", len(res.Applied))
}

// Swap runs a swap requested over the control socket with the daemon's
// current regions and threshold.
func (d *Daemon) Swap(ctx context.Context, p ipc.SwapPayload) (swap.Result, error) {
	a, err := region.Parse(p.A)
	if err != nil {
		return swap.Result{}, fmt.Errorf("region A: %w", err)
	}
	b, err := region.Parse(p.B)
	if err != nil {
		return swap.Result{}, fmt.Errorf("region B: %w", err)
	}

	d.mu.Lock()
	threshold := d.cfg.OverlapThreshold
	d.mu.Unlock()
	if p.OverlapThreshold != nil {
		threshold = *p.OverlapThreshold
	}

	res, err := d.opts.Swapper.Run(ctx, swap.Request{A: a, B: b, Threshold: threshold, DryRun: p.DryRun})
	if !p.DryRun {
		d.recordSwap("", a, b, res, err)
	}
	return res, err
}

// Status reports the bound hotkeys and the last swap.
func (d *Daemon) Status() ipc.StatusData {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := ipc.StatusData{
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(d.started).Seconds()),
		ConfigPath:    d.opts.ConfigPath,
		Bindings:      []ipc.BindingInfo{},
	}
	if d.cfg != nil {
		for _, b := range d.cfg.Bindings {
			status.Bindings = append(status.Bindings, ipc.BindingInfo{
				Hotkey:           b.Hotkey,
				A:                b.A.String(),
				B:                b.B.String(),
				OverlapThreshold: b.Threshold(d.cfg.OverlapThreshold),
			})
		}
	}
	if d.lastSwap != nil {
		last := *d.lastSwap
		status.LastSwap = &last
	}
	return status
}

func (d *Daemon) recordSwap(hotkey string, a, b region.Spec, res swap.Result, err error) {
	summary := &ipc.SwapSummary{
		Hotkey: hotkey,
		A:      a.String(),
		B:      b.String(),
		At:     time.Now(),
		Moved:  len(res.Applied),
		Failed: len(res.Failed),
	}
	if err != nil {
		summary.Error = err.Error()
	}
	d.mu.Lock()
	d.lastSwap = summary
	d.mu.Unlock()
}

func (d *Daemon) serveControl() (func(), error) {
	path := d.opts.SocketPath
	if path == "-" {
		return func() {}, nil
	}
	if path == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	srv := ipc.NewServer(path, d, d.logger)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return srv.Stop, nil
}

// fileWatch is one armed WatchFiles call over a fixed file list.
type fileWatch struct {
	files   []string
	changes <-chan struct{}
	cancel  context.CancelFunc
}

func (w *fileWatch) stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

// watchList returns the files loaded by the last reload plus the config path,
// sorted and without duplicates.
func (d *Daemon) watchList() []string {
	d.mu.Lock()
	files := append([]string(nil), d.files...)
	d.mu.Unlock()
	if d.opts.ConfigPath != "" {
		files = append(files, d.opts.ConfigPath)
	}
	slices.Sort(files)
	return slices.Compact(files)
}

func (d *Daemon) watch(ctx context.Context) *fileWatch {
	w := &fileWatch{files: d.watchList()}
	if len(w.files) == 0 {
		return w
	}

	watchCtx, cancel := context.WithCancel(ctx)
	changes, err := WatchFiles(watchCtx, w.files, d.opts.Debounce, d.logger)
	if err != nil {
		cancel()
		d.logger.Warn("config file watching disabled; send SIGHUP to reload", "error", err)
		return w
	}
	w.changes, w.cancel = changes, cancel
	return w
}

func (d *Daemon) acquirePidFile() (func(), error) {
	path := d.opts.PidFile
	if path == "-" {
		return func() {}, nil
	}
	if path == "" {
		p, err := runtimepath.PidFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return runtimepath.AcquirePidFile(path)
}
