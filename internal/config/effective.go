package config

import (
	"fmt"
	"sort"

	"github.com/1broseidon/regionswap/internal/region"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies a merged raw config over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.OverlapThreshold != nil {
		cfg.OverlapThreshold = *raw.OverlapThreshold
	}
	if raw.UseWorkArea != nil {
		cfg.UseWorkArea = *raw.UseWorkArea
	}
	for name, spec := range raw.Regions {
		cfg.Regions[name] = spec
	}

	if raw.Bindings != nil {
		cfg.Bindings = make([]Binding, 0, len(raw.Bindings))
		for i, rb := range raw.Bindings {
			path := fmt.Sprintf("bindings.%d", i)
			if rb.A == nil {
				return nil, &ValidationError{Path: path + ".a", Err: fmt.Errorf("region a is required")}
			}
			if rb.B == nil {
				return nil, &ValidationError{Path: path + ".b", Err: fmt.Errorf("region b is required")}
			}
			cfg.Bindings = append(cfg.Bindings, Binding{
				Hotkey:           derefString(rb.Hotkey, ""),
				A:                *rb.A,
				B:                *rb.B,
				OverlapThreshold: rb.OverlapThreshold,
			})
		}
	}

	if raw.Logging != nil {
		if raw.Logging.Level != nil {
			cfg.Logging.Level = *raw.Logging.Level
		}
		if raw.Logging.Format != nil {
			cfg.Logging.Format = *raw.Logging.Format
		}
		if raw.Logging.File != nil {
			cfg.Logging.File = *raw.Logging.File
		}
		cfg.Logging.MaxSizeMB = derefInt(raw.Logging.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxFiles = derefInt(raw.Logging.MaxFiles, cfg.Logging.MaxFiles)
	}

	return cfg, nil
}

// Presets returns the named regions in the form the swapper resolves.
func (c *Config) Presets() map[string]region.Spec {
	out := make(map[string]region.Spec, len(c.Regions))
	for name, spec := range c.Regions {
		out[name] = spec
	}
	return out
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
