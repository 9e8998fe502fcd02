// Package palette shows a list of swaps in an external dmenu-style launcher
// (rofi, fuzzel, wofi or dmenu) and returns the one the user picked.
package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single entry in the palette.
type Item struct {
	Label string
	// Value is returned to the caller on selection; it is never shown.
	Value    string
	IsHeader bool // non-selectable section header
}

// Backend shows a palette to the user and returns the selected item.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
}

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

var launchers = []struct {
	name string
	kind backendKind
}{
	{"rofi", kindRofi},
	{"fuzzel", kindFuzzel},
	{"wofi", kindWofi},
	{"dmenu", kindDmenu},
}

// runFunc runs a launcher with input on stdin and returns its stdout.
type runFunc func(command string, args []string, input string) (string, error)

type launcher struct {
	command string
	kind    backendKind
	run     runFunc
}

// DetectBackend returns the first launcher found in PATH, in priority order:
// rofi, fuzzel, wofi, dmenu.
func DetectBackend() (string, error) {
	for _, l := range launchers {
		if _, err := exec.LookPath(l.name); err == nil {
			return l.name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: rofi, fuzzel, wofi, dmenu)")
}

// NewBackend creates a backend by name. Supported names: auto, rofi, fuzzel,
// wofi, dmenu.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	for _, l := range launchers {
		if l.name != name {
			continue
		}
		if _, err := exec.LookPath(l.name); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", l.name)
		}
		return &launcher{command: l.name, kind: l.kind, run: runCommand}, nil
	}
	return nil, fmt.Errorf("unknown palette backend %q (supported: auto, rofi, fuzzel, wofi, dmenu)", name)
}

func (b *launcher) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	out, err := b.run(b.command, b.buildArgs(prompt), b.formatInput(items))
	selection := strings.TrimSpace(out)
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}

	item, err := b.parseSelection(selection, items)
	if err != nil {
		return Item{}, err
	}
	if item.IsHeader {
		return Item{}, ErrCancelled
	}
	return item, nil
}

func (b *launcher) buildArgs(prompt string) []string {
	var args []string
	switch b.kind {
	case kindRofi:
		// Index output keeps parsing independent of the label text.
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindWofi:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func (b *launcher) formatInput(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		label := sanitizeLabel(item.Label)
		if b.kind != kindRofi {
			lines = append(lines, label)
			continue
		}
		label = html.EscapeString(label)
		if item.IsHeader {
			// Rofi row options follow a single NUL.
			label = "<b>" + label + "</b>\x00nonselectable\x1ftrue"
		}
		lines = append(lines, label)
	}
	return strings.Join(lines, "\n")
}

func (b *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if b.kind == kindRofi || b.kind == kindFuzzel {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func runCommand(command string, args []string, input string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s failed: %s", command, msg)
		}
		return string(out), fmt.Errorf("%s failed: %w", command, err)
	}
	return string(out), err
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	label = strings.ReplaceAll(label, "\x00", " ")
	return strings.TrimSpace(label)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// Launchers use 1 for "no selection" and 130 for Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
