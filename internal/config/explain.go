package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	overlap_threshold
//	use_work_area
//	regions
//	regions.<name>
//	bindings
//	bindings.<index>
//	bindings.<index>.hotkey
//	bindings.<index>.a
//	bindings.<index>.overlap_threshold
//	logging.level
//	logging.file
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	unknown := fmt.Errorf("unknown path: %s", path)

	switch parts[0] {
	case "overlap_threshold":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.OverlapThreshold, nil
	case "use_work_area":
		if len(parts) != 1 {
			return nil, unknown
		}
		return cfg.UseWorkArea, nil
	case "regions":
		switch len(parts) {
		case 1:
			return cfg.Regions, nil
		case 2:
			spec, ok := cfg.Regions[parts[1]]
			if !ok {
				return nil, fmt.Errorf("region %q is not defined", parts[1])
			}
			return spec.String(), nil
		}
		return nil, unknown
	case "bindings":
		if len(parts) == 1 {
			return cfg.Bindings, nil
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 || i >= len(cfg.Bindings) {
			return nil, fmt.Errorf("binding %q does not exist (%d configured)", parts[1], len(cfg.Bindings))
		}
		b := cfg.Bindings[i]
		if len(parts) == 2 {
			return b, nil
		}
		if len(parts) != 3 {
			return nil, unknown
		}
		switch parts[2] {
		case "hotkey":
			return b.Hotkey, nil
		case "a":
			return b.A.String(), nil
		case "b":
			return b.B.String(), nil
		case "overlap_threshold":
			return b.Threshold(cfg.OverlapThreshold), nil
		}
		return nil, unknown
	case "logging":
		if len(parts) == 1 {
			return cfg.Logging, nil
		}
		if len(parts) != 2 {
			return nil, unknown
		}
		logging := cfg.GetLoggingConfig()
		switch parts[1] {
		case "level":
			return logging.Level, nil
		case "format":
			return logging.Format, nil
		case "file":
			return logging.File, nil
		case "max_size_mb":
			return logging.MaxSizeMB, nil
		case "max_files":
			return logging.MaxFiles, nil
		}
		return nil, unknown
	}
	return nil, unknown
}
