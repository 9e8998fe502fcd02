package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/1broseidon/regionswap/internal/mcp"
)

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Model Context Protocol server",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the MCP server on stdio",
				UsageText: "regionswap mcp serve\n\n" +
					"Designed to be invoked by MCP clients, for example:\n" +
					"  claude mcp add regionswap -- regionswap mcp serve",
				Action: a.runMCPServe,
			},
		},
	}
}

func (a *app) runMCPServe(ctx context.Context, cmd *cli.Command) error {
	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr or the configured file.
	logger, closeLog, err := a.newLogger(cmd, res.Config)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	backend, release, err := a.open()
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return mcp.NewServer(backend, res.Config, logger).Run(ctx)
}
