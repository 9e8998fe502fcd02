// Package region names a rectangle of the virtual desktop: a monitor by
// index, a literal rectangle, or a preset defined in the config file.
package region

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
	"gopkg.in/yaml.v3"
)

// Kind discriminates the forms a Spec can take.
type Kind int

const (
	KindMonitor Kind = iota
	KindRect
	KindNamed
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Spec identifies a region before it is resolved against the live displays.
// The zero value is monitor 0.
type Spec struct {
	Kind    Kind
	Monitor int
	Rect    geom.Rect
	Name    string
}

// Monitor returns a Spec for the display with the given index.
func Monitor(index int) Spec { return Spec{Kind: KindMonitor, Monitor: index} }

// Rect returns a Spec for a literal rectangle.
func Rect(r geom.Rect) Spec { return Spec{Kind: KindRect, Rect: r} }

// Named returns a Spec referring to a preset.
func Named(name string) Spec { return Spec{Kind: KindNamed, Name: name} }

// Parse reads a region argument: "1" is a monitor index,
// "left,top,right,bottom" a rectangle, anything else a preset name.
func Parse(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, errors.New("empty region")
	}

	if isDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Spec{}, fmt.Errorf("monitor index %q: %w", s, err)
		}
		return Monitor(n), nil
	}

	if strings.Contains(s, ",") {
		r, err := parseRect(s)
		if err != nil {
			return Spec{}, fmt.Errorf("region %q: %w", s, err)
		}
		return Rect(r), nil
	}

	if !namePattern.MatchString(s) {
		return Spec{}, fmt.Errorf("region %q: expected a monitor index, \"left,top,right,bottom\" or a preset name", s)
	}
	return Named(s), nil
}

func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, fmt.Errorf("expected 4 comma-separated values (left,top,right,bottom), got %d", len(parts))
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geom.Rect{}, fmt.Errorf("value %d (%q) is not an integer", i+1, strings.TrimSpace(p))
		}
		v[i] = n
	}
	r := geom.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if r.Right < r.Left {
		return geom.Rect{}, fmt.Errorf("right (%d) is left of left (%d)", r.Right, r.Left)
	}
	if r.Bottom < r.Top {
		return geom.Rect{}, fmt.Errorf("bottom (%d) is above top (%d)", r.Bottom, r.Top)
	}
	return r, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String returns the form Parse accepts.
func (s Spec) String() string {
	switch s.Kind {
	case KindRect:
		return fmt.Sprintf("%d,%d,%d,%d", s.Rect.Left, s.Rect.Top, s.Rect.Right, s.Rect.Bottom)
	case KindNamed:
		return s.Name
	default:
		return strconv.Itoa(s.Monitor)
	}
}

// Resolve turns the spec into a concrete rectangle. Monitor indexes refer to
// displays by position; with useWorkArea the display's usable area is used
// instead of its full bounds. Named specs are looked up in presets and may
// refer to other presets.
func (s Spec) Resolve(displays []platform.Display, presets map[string]Spec, useWorkArea bool) (geom.Rect, error) {
	return s.resolve(displays, presets, useWorkArea, nil)
}

func (s Spec) resolve(displays []platform.Display, presets map[string]Spec, useWorkArea bool, seen []string) (geom.Rect, error) {
	switch s.Kind {
	case KindMonitor:
		if s.Monitor < 0 || s.Monitor >= len(displays) {
			return geom.Rect{}, fmt.Errorf("monitor %d does not exist (%d connected)", s.Monitor, len(displays))
		}
		d := displays[s.Monitor]
		if useWorkArea && !d.Usable.Empty() {
			return d.Usable, nil
		}
		return d.Bounds, nil

	case KindRect:
		return s.Rect, nil

	case KindNamed:
		for _, name := range seen {
			if name == s.Name {
				return geom.Rect{}, fmt.Errorf("region %q refers to itself (%s)", s.Name, strings.Join(append(seen, s.Name), " -> "))
			}
		}
		next, ok := presets[s.Name]
		if !ok {
			return geom.Rect{}, fmt.Errorf("unknown region %q", s.Name)
		}
		return next.resolve(displays, presets, useWorkArea, append(seen, s.Name))
	}
	return geom.Rect{}, fmt.Errorf("invalid region kind %d", s.Kind)
}

// MarshalYAML writes the string form.
func (s Spec) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts the string form, or a bare integer for a monitor.
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: region must be a string such as \"1\" or \"0,0,1920,1080\"", value.Line)
	}
	parsed, err := Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}
