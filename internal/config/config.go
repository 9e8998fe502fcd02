package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/region"
)

// Binding maps a global hotkey to a swap between two regions.
type Binding struct {
	Hotkey string      `yaml:"hotkey"`
	A      region.Spec `yaml:"a"`
	B      region.Spec `yaml:"b"`
	// OverlapThreshold overrides the global threshold for this binding.
	OverlapThreshold *float64 `yaml:"overlap_threshold,omitempty"`
}

// Threshold returns the binding's threshold, falling back to global.
func (b Binding) Threshold(global float64) float64 {
	if b.OverlapThreshold != nil {
		return *b.OverlapThreshold
	}
	return global
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// Format is text or json
	Format string `yaml:"format,omitempty"`
	// File is the log file path; empty logs to stderr
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	OverlapThreshold float64                `yaml:"overlap_threshold"`
	UseWorkArea      bool                   `yaml:"use_work_area"`
	Regions          map[string]region.Spec `yaml:"regions,omitempty"`
	Bindings         []Binding              `yaml:"bindings,omitempty"`
	Logging          LoggingConfig          `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		OverlapThreshold: geom.DefaultOverlapThreshold,
		Regions:          map[string]region.Spec{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{Level: "info", Format: "text"}
	}
	cfg := c.Logging
	if cfg.File != "" {
		cfg.File = expandHome(cfg.File)
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	return cfg
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

func (c *Config) Validate() error {
	if !geom.ValidThreshold(c.OverlapThreshold) {
		return &ValidationError{Path: "overlap_threshold", Err: fmt.Errorf("overlap_threshold must be between 0 and 1")}
	}

	for _, name := range sortedKeys(c.Regions) {
		if err := validateRegionName(name); err != nil {
			return &ValidationError{Path: "regions." + name, Err: err}
		}
		if err := c.checkRegionRef(c.Regions[name]); err != nil {
			return &ValidationError{Path: "regions." + name, Err: err}
		}
	}

	hotkeys := make(map[string]int, len(c.Bindings))
	for i, b := range c.Bindings {
		path := fmt.Sprintf("bindings.%d", i)
		if strings.TrimSpace(b.Hotkey) == "" {
			return &ValidationError{Path: path + ".hotkey", Err: fmt.Errorf("hotkey is required")}
		}
		if prev, ok := hotkeys[b.Hotkey]; ok {
			return &ValidationError{Path: path + ".hotkey", Err: fmt.Errorf("hotkey %q is already bound by bindings.%d", b.Hotkey, prev)}
		}
		hotkeys[b.Hotkey] = i
		if err := c.checkRegionRef(b.A); err != nil {
			return &ValidationError{Path: path + ".a", Err: err}
		}
		if err := c.checkRegionRef(b.B); err != nil {
			return &ValidationError{Path: path + ".b", Err: err}
		}
		if t := b.OverlapThreshold; t != nil && !geom.ValidThreshold(*t) {
			return &ValidationError{Path: path + ".overlap_threshold", Err: fmt.Errorf("overlap_threshold must be between 0 and 1")}
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string
	for i, b := range c.Bindings {
		if b.A == b.B {
			warnings = append(warnings, fmt.Sprintf("bindings.%d swaps region %s with itself; it will move nothing", i, b.A))
		}
	}
	return warnings
}

func validateRegionName(name string) error {
	spec, err := region.Parse(name)
	if err != nil || spec.Kind != region.KindNamed || spec.Name != name {
		return fmt.Errorf("invalid region name %q: use letters, digits, '_' or '-', not starting with a digit", name)
	}
	return nil
}

// checkRegionRef follows named references through the presets. Monitor
// indexes are only checked against live displays at swap time.
func (c *Config) checkRegionRef(spec region.Spec) error {
	var chain []string
	for spec.Kind == region.KindNamed {
		for _, seen := range chain {
			if seen == spec.Name {
				return fmt.Errorf("region %q refers to itself (%s)", spec.Name, strings.Join(append(chain, spec.Name), " -> "))
			}
		}
		chain = append(chain, spec.Name)
		next, ok := c.Regions[spec.Name]
		if !ok {
			return fmt.Errorf("unknown region %q", spec.Name)
		}
		spec = next
	}
	if spec.Kind == region.KindMonitor && spec.Monitor < 0 {
		return fmt.Errorf("monitor index must be >= 0")
	}
	return nil
}
