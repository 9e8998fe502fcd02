package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/logging"
	"github.com/1broseidon/regionswap/internal/palette"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/runtimepath"
)

var version = "dev"

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	a := &app{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		openBackend: platform.Open,
		newPalette:  palette.NewBackend,
	}
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		os.Exit(a.reportError(err))
	}
}

// app carries the process streams and the window-system opener so commands
// can run against an in-memory backend.
type app struct {
	stdout      io.Writer
	stderr      io.Writer
	openBackend func() (platform.Backend, error)
	newPalette  func(name string) (palette.Backend, error)
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    "regionswap",
		Usage:   "swap the windows of two screen regions",
		Version: version,
		UsageText: "regionswap [options] [A] [B]\n\n" +
			"A and B default to monitors 0 and 1. A region is a monitor index (1),\n" +
			"a rectangle left,top,right,bottom (0,0,1280,1440) or a preset name from config.",
		ArgsUsage:       "[A] [B]",
		Writer:          a.stdout,
		ErrWriter:       a.stderr,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "config file path (default: ~/.config/regionswap/config.yaml)",
				Sources: cli.EnvVars("REGIONSWAP_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "info",
				Usage: "print displays and windows instead of swapping",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print machine-readable JSON",
			},
			&cli.Float64Flag{
				Name:  "overlap-threshold",
				Usage: "fraction of a window that must lie in a region for it to move (default: from config, 0.8)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the planned moves without applying them",
			},
			&cli.BoolFlag{
				Name:  "via-daemon",
				Usage: "ask the running daemon to perform the swap",
			},
			&cli.StringFlag{
				Name:    "socket",
				Usage:   "daemon control socket (default: $XDG_RUNTIME_DIR/regionswap.sock)",
				Sources: cli.EnvVars("REGIONSWAP_SOCKET"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log at debug level",
			},
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return cli.Exit(err.Error(), exitUsage)
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action:         a.runSwap,
		Commands: []*cli.Command{
			a.daemonCommand(),
			a.statusCommand(),
			a.reloadCommand(),
			a.pickCommand(),
			a.mcpCommand(),
			a.configCommand(),
		},
	}
}

// reportError prints err and returns the process exit code for it.
func (a *app) reportError(err error) int {
	code := exitFailure
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(a.stderr, "regionswap: %s\n", msg)
	}
	return code
}

func usageError(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), exitUsage)
}

func configPath(cmd *cli.Command) (string, error) {
	if p := cmd.String("config"); p != "" {
		return p, nil
	}
	return config.DefaultConfigPath()
}

func socketPath(cmd *cli.Command) (string, error) {
	if p := cmd.String("socket"); p != "" {
		return p, nil
	}
	return runtimepath.SocketPath()
}

func loadConfig(cmd *cli.Command) (*config.LoadResult, error) {
	if p := cmd.String("config"); p != "" {
		return config.LoadFromPath(p)
	}
	return config.LoadWithSources()
}

func (a *app) newLogger(cmd *cli.Command, cfg *config.Config) (*slog.Logger, func() error, error) {
	logger, closeFn, err := logging.New(cfg.GetLoggingConfig(), logging.Options{
		App:     "regionswap",
		Version: version,
		Verbose: cmd.Bool("verbose"),
		Stderr:  a.stderr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, closeFn, nil
}

func (a *app) open() (platform.Backend, func(), error) {
	backend, err := a.openBackend()
	if err != nil {
		return nil, nil, fmt.Errorf("connect to display: %w", err)
	}
	release := func() {}
	if closer, ok := backend.(platform.Closer); ok {
		release = closer.Disconnect
	}
	return backend, release, nil
}
