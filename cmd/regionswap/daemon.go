package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/daemon"
	"github.com/1broseidon/regionswap/internal/hotkeys"
	"github.com/1broseidon/regionswap/internal/ipc"
	"github.com/1broseidon/regionswap/internal/swap"
)

func (a *app) daemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "bind the configured hotkeys and swap regions when they are pressed (foreground)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "pid-file",
				Usage: "pid file path (default: $XDG_RUNTIME_DIR/regionswap.pid)",
			},
		},
		Action: a.runDaemon,
	}
}

func (a *app) runDaemon(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return usageError("daemon takes no arguments")
	}
	path, err := configPath(cmd)
	if err != nil {
		return err
	}
	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := a.newLogger(cmd, res.Config)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()
	logger.Info("configuration loaded", "path", path, "bindings", len(res.Config.Bindings))

	backend, release, err := a.open()
	if err != nil {
		return err
	}
	defer release()

	loop, ok := backend.(daemon.EventLoop)
	if !ok {
		return errors.New("the daemon needs a window system with global hotkeys; run regionswap A B from your own hotkey tool instead")
	}
	handler, err := hotkeys.NewHandler(backend, logger)
	if err != nil {
		return err
	}

	d := daemon.New(daemon.Options{
		Swapper:    swap.New(backend, logger),
		Binder:     handler,
		Loop:       loop,
		Load:       func() (*config.LoadResult, error) { return config.LoadFromPath(path) },
		ConfigPath: path,
		PidFile:    cmd.String("pid-file"),
		SocketPath: cmd.String("socket"),
		Logger:     logger,
	})
	logger.Info("regionswap daemon started")
	return d.Run(ctx)
}

func (a *app) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show the running daemon's bindings and last swap",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := socketPath(cmd)
			if err != nil {
				return err
			}
			status, err := ipc.NewClient(path).GetStatus()
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			printStatus(a.stdout, status)
			return nil
		},
	}
}

func (a *app) reloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "reload",
		Usage: "make the running daemon reload its config and rebind hotkeys",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := socketPath(cmd)
			if err != nil {
				return err
			}
			if err := ipc.NewClient(path).Reload(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "reloaded")
			return nil
		},
	}
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "daemon: running (pid %d, up %s)\n", s.PID, time.Duration(s.UptimeSeconds)*time.Second)
	if s.ConfigPath != "" {
		fmt.Fprintf(w, "config: %s\n", s.ConfigPath)
	}
	if len(s.Bindings) == 0 {
		fmt.Fprintln(w, "bindings: none")
	} else {
		fmt.Fprintln(w, "bindings:")
		for _, b := range s.Bindings {
			fmt.Fprintf(w, "  %-20s %s <-> %s (threshold %.2f)\n", b.Hotkey, b.A, b.B, b.OverlapThreshold)
		}
	}
	if s.LastSwap == nil {
		return
	}
	last := s.LastSwap
	trigger := "ipc"
	if last.Hotkey != "" {
		trigger = last.Hotkey
	}
	fmt.Fprintf(w, "last swap: %s <-> %s via %s at %s, %d moved, %d failed\n",
		last.A, last.B, trigger, last.At.Format(time.DateTime), last.Moved, last.Failed)
	if last.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", last.Error)
	}
}
