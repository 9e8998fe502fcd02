// Package mcp exposes region swapping as Model Context Protocol tools.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/regionswap/internal/config"
	"github.com/1broseidon/regionswap/internal/platform"
	"github.com/1broseidon/regionswap/internal/swap"
)

const (
	ServerName    = "regionswap"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for region swaps.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   platform.Backend
	swapper   *swap.Swapper
	config    *config.Config
	logger    *slog.Logger
}

// NewServer creates an MCP server acting on backend with the regions and
// threshold from cfg.
func NewServer(backend platform.Backend, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	swapper := swap.New(backend, logger)
	swapper.SetRegions(cfg.Presets(), cfg.UseWorkArea)

	s := &Server{
		backend: backend,
		swapper: swapper,
		config:  cfg,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List connected displays with their full bounds and usable work area. Display indices are the monitor numbers accepted as regions by swap_regions.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List movable top-level windows with their visible frames. Optionally filter to windows lying mostly inside a region.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "swap_regions",
		Description: "Swap the windows of two regions: every window lying mostly in region a moves to the proportionally matching place in region b, and vice versa. Regions are a monitor index, a left,top,right,bottom rectangle or a preset name from config. Use dry_run to preview the moves.",
	}, s.handleSwapRegions)
}
