package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/regionswap/internal/config"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect the configuration",
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "load and validate the config file",
				Action: a.runConfigValidate,
			},
			{
				Name:  "print",
				Usage: "print the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "defaults", Usage: "print built-in defaults (no files)"},
				},
				Action: a.runConfigPrint,
			},
			{
				Name:      "explain",
				Usage:     "show a config value and the file and line that set it",
				ArgsUsage: "<yaml.path>",
				Action:    a.runConfigExplain,
			},
		},
	}
}

func (a *app) runConfigValidate(_ context.Context, cmd *cli.Command) error {
	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(res.Files) == 0 {
		fmt.Fprintln(a.stdout, "config: ok (no file, using defaults)")
		return nil
	}
	fmt.Fprintln(a.stdout, "config: ok")
	return nil
}

func (a *app) runConfigPrint(_ context.Context, cmd *cli.Command) error {
	cfg := config.DefaultConfig()
	if !cmd.Bool("defaults") {
		res, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = res.Config
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(data)
	return err
}

func (a *app) runConfigExplain(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return usageError("explain requires exactly one <yaml.path>")
	}
	queryPath := cmd.Args().First()

	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	value, src, err := config.Explain(res, queryPath)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "path: %s\n", queryPath)
	fmt.Fprintf(a.stdout, "source: %s\n", formatSource(src))
	fmt.Fprintf(a.stdout, "value:\n%s", out)
	return nil
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
