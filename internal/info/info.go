// Package info renders the display and window snapshot printed by
// "regionswap --info".
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

// Report is everything --info shows. Regions are optional; when both are set
// each window's overlap with them is included.
type Report struct {
	Displays  []platform.Display `json:"displays"`
	Windows   []platform.Window  `json:"windows"`
	RegionA   *geom.Rect         `json:"region_a,omitempty"`
	RegionB   *geom.Rect         `json:"region_b,omitempty"`
	Threshold float64            `json:"threshold"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = cellStyle.Foreground(lipgloss.Color("241"))
	hitStyle    = cellStyle.Foreground(lipgloss.Color("42"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write renders r as two tables. styled adds colour and box borders; the
// plain form uses ASCII borders so it survives pipes and logs.
func Write(w io.Writer, r Report, styled bool) error {
	border := lipgloss.ASCIIBorder()
	if styled {
		border = lipgloss.RoundedBorder()
	}

	displays := table.New().
		Border(border).
		Headers("ID", "NAME", "BOUNDS", "USABLE")
	for _, d := range r.Displays {
		displays.Row(strconv.Itoa(d.ID), d.Name, d.Bounds.String(), d.Usable.String())
	}

	headers := []string{"ID", "APP", "TITLE", "FRAME", "BOUNDS"}
	withRegions := r.RegionA != nil && r.RegionB != nil
	if withRegions {
		headers = append(headers, "IN A", "IN B")
	}
	windows := table.New().
		Border(border).
		Headers(headers...)
	for _, win := range r.Windows {
		row := []string{
			fmt.Sprintf("%#x", uint64(win.ID)),
			win.AppID,
			truncate(win.Title, 40),
			win.Frame.String(),
			win.Bounds.String(),
		}
		if withRegions {
			row = append(row,
				percent(geom.OverlapFraction(win.Frame, *r.RegionA)),
				percent(geom.OverlapFraction(win.Frame, *r.RegionB)),
			)
		}
		windows.Row(row...)
	}

	if styled {
		displays.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
		windows.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if withRegions && col >= 5 && row >= 0 && row < len(r.Windows) {
				region := *r.RegionA
				if col == 6 {
					region = *r.RegionB
				}
				if geom.OverlapFraction(r.Windows[row].Frame, region) >= r.Threshold {
					return hitStyle
				}
				return dimStyle
			}
			return cellStyle
		})
	}

	heading := func(s string) string {
		if styled {
			return titleStyle.Render(s)
		}
		return s
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n\n%s\n%s\n",
		heading("Displays"), displays.String(),
		heading(fmt.Sprintf("Windows (%d)", len(r.Windows))), windows.String(),
	)
	return err
}

func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
