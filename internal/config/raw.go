package config

import (
	"fmt"

	"github.com/1broseidon/regionswap/internal/region"
	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawBinding struct {
	Hotkey           *string      `yaml:"hotkey"`
	A                *region.Spec `yaml:"a"`
	B                *region.Spec `yaml:"b"`
	OverlapThreshold *float64     `yaml:"overlap_threshold"`
}

type RawLoggingConfig struct {
	Level     *string `yaml:"level"`
	Format    *string `yaml:"format"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawConfig struct {
	Include          IncludeList            `yaml:"include"`
	OverlapThreshold *float64               `yaml:"overlap_threshold"`
	UseWorkArea      *bool                  `yaml:"use_work_area"`
	Regions          map[string]region.Spec `yaml:"regions"`
	Bindings         []RawBinding           `yaml:"bindings"`
	Logging          *RawLoggingConfig      `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.OverlapThreshold != nil {
		out.OverlapThreshold = overlay.OverlapThreshold
	}
	if overlay.UseWorkArea != nil {
		out.UseWorkArea = overlay.UseWorkArea
	}

	if overlay.Regions != nil {
		merged := make(map[string]region.Spec, len(out.Regions)+len(overlay.Regions))
		for name, spec := range out.Regions {
			merged[name] = spec
		}
		for name, spec := range overlay.Regions {
			merged[name] = spec
		}
		out.Regions = merged
	}

	// Binding lists are replaced wholesale; entries have no stable key to
	// merge on.
	if overlay.Bindings != nil {
		out.Bindings = overlay.Bindings
	}

	if overlay.Logging != nil {
		logging := RawLoggingConfig{}
		if out.Logging != nil {
			logging = *out.Logging
		}
		if overlay.Logging.Level != nil {
			logging.Level = overlay.Logging.Level
		}
		if overlay.Logging.Format != nil {
			logging.Format = overlay.Logging.Format
		}
		if overlay.Logging.File != nil {
			logging.File = overlay.Logging.File
		}
		if overlay.Logging.MaxSizeMB != nil {
			logging.MaxSizeMB = overlay.Logging.MaxSizeMB
		}
		if overlay.Logging.MaxFiles != nil {
			logging.MaxFiles = overlay.Logging.MaxFiles
		}
		out.Logging = &logging
	}

	return out
}
