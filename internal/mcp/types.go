package mcp

import (
	"github.com/1broseidon/regionswap/internal/geom"
	"github.com/1broseidon/regionswap/internal/platform"
)

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []platform.Display `json:"displays"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Region string `json:"region,omitempty" jsonschema:"Only list windows whose frame overlaps this region by at least overlap_threshold (monitor index, left,top,right,bottom or a preset name)"`
	// OverlapThreshold is only used when Region is set.
	OverlapThreshold *float64 `json:"overlap_threshold,omitempty" jsonschema:"Minimum overlap fraction for the region filter (default: configured threshold)"`
}

// WindowInfo describes a window and how much of it lies in the filter region.
type WindowInfo struct {
	Window  platform.Window `json:"window"`
	Overlap *float64        `json:"overlap,omitempty"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// SwapRegionsInput is the input for the swap_regions tool.
type SwapRegionsInput struct {
	A                string   `json:"a" jsonschema:"First region: monitor index (0), rectangle (left,top,right,bottom) or a preset name from config"`
	B                string   `json:"b" jsonschema:"Second region, same forms as a"`
	OverlapThreshold *float64 `json:"overlap_threshold,omitempty" jsonschema:"Fraction of a window's frame that must lie in a region for it to move (0-1, default: configured threshold)"`
	DryRun           bool     `json:"dry_run,omitempty" jsonschema:"When true, plan the swap and report the moves without applying them"`
}

// MoveInfo is one planned or applied window move.
type MoveInfo struct {
	WindowID platform.WindowID `json:"window_id"`
	Title    string            `json:"title"`
	Source   string            `json:"source"`
	OldFrame geom.Rect         `json:"old_frame"`
	NewFrame geom.Rect         `json:"new_frame"`
	Applied  bool              `json:"applied"`
}

// SwapRegionsOutput is the output for the swap_regions tool.
type SwapRegionsOutput struct {
	RegionA   geom.Rect  `json:"region_a"`
	RegionB   geom.Rect  `json:"region_b"`
	Threshold float64    `json:"threshold"`
	DryRun    bool       `json:"dry_run"`
	Moves     []MoveInfo `json:"moves"`
	Untouched int        `json:"untouched"`
	// Error lists the moves that failed; the others were still applied.
	Error string `json:"error,omitempty"`
}
