// Package logging builds the process slog.Logger from the logging section of
// the config file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/regionswap/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const EnvLogLevel = "REGIONSWAP_LOG_LEVEL"

// Options carry process-level attributes and overrides.
type Options struct {
	App     string
	Version string
	// Verbose forces debug level regardless of config.
	Verbose bool
	// Stderr is the console sink; nil means os.Stderr.
	Stderr io.Writer
}

// New returns a logger writing to cfg.File (rotated) or the console. The
// returned close function flushes and closes the file sink.
func New(cfg config.LoggingConfig, opts Options) (*slog.Logger, func() error, error) {
	if opts.App == "" {
		opts.App = "regionswap"
	}

	level := ParseLevel(cfg.Level)
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		level = ParseLevel(env)
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	writer, closeFn, err := resolveWriter(cfg, opts.Stderr)
	if err != nil {
		return nil, nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	logger := slog.New(handler).With(slog.String("app", opts.App))
	if opts.Version != "" {
		logger = logger.With(slog.String("version", opts.Version))
	}
	return logger, closeFn, nil
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveWriter(cfg config.LoggingConfig, stderr io.Writer) (io.Writer, func() error, error) {
	path := strings.TrimSpace(cfg.File)
	if path == "" {
		if stderr == nil {
			stderr = os.Stderr
		}
		return stderr, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
		LocalTime:  true,
	}
	return rot, rot.Close, nil
}
