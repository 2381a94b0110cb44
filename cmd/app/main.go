package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/starford/presswork/internal"
	pkgconfig "github.com/starford/presswork/pkg/config"
)

type runner func(ctx context.Context, opts ...internal.Option) error

func action(run runner) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if _, err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
		}
		if cmd.Bool("dev") {
			opts = append(opts, internal.WithDevelopment(true))
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "presswork",
		Usage:  "Markdown blog publishing: visibility, listings, tags, series and feeds",
		Action: action(internal.Build),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "Development mode: drafts are listed and reachable",
				Sources: cli.EnvVars("APP_DEVELOPMENT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the site once and write the feeds",
				Action: action(internal.Build),
			},
			{
				Name:   "serve",
				Usage:  "Serve the preview API and rebuild on content changes",
				Action: action(internal.Run),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the post tools over MCP stdio",
				Action: action(internal.RunMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log, _ := zap.NewProduction()
		log.Error("application error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
