package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/kramify/internal"
	pkgconfig "github.com/starford/kramify/pkg/config"
)

var version = "dev"

// loadConfig reads the config file (defaults when it is absent) and applies
// command-line overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if g := cmd.String("generator"); g != "" {
		cfg.Site.Generator = g
		if err := cfg.Site.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --generator: %w", err)
		}
	}
	if cmd.Bool("force") {
		cfg.Frontmatter.Force = true
	}
	if cmd.Bool("frontmatter") {
		cfg.Frontmatter.Enabled = true
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func convertAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	summary, err := internal.Convert(ctx, opts...)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "%d documents, %d written, %d constructs converted\n",
		summary.Documents, summary.Written, summary.Converted)
	return nil
}

func frontmatterAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	summary, err := internal.Frontmatter(ctx, opts...)
	if err != nil {
		return fmt.Errorf("frontmatter: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "%d documents, %d headers updated\n", summary.Documents, summary.Written)
	return nil
}

func inspectAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	opts = append(opts, internal.WithOutput(cmd.Root().Writer))
	return internal.Inspect(ctx, opts...)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	generatorFlag := &cli.StringFlag{
		Name:    "generator",
		Aliases: []string{"g"},
		Usage:   "Target generator: auto, mkdocs or jekyll (overrides site.generator)",
		Sources: cli.EnvVars("KRAMIFY_GENERATOR"),
	}
	forceFlag := &cli.BoolFlag{
		Name:  "force",
		Usage: "Rewrite frontmatter even when last_updated is current",
	}

	cmd := &cli.Command{
		Name:    "kramify",
		Usage:   "Convert Obsidian Markdown links, images and callouts to Kramdown for MkDocs and Jekyll",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "convert",
				Usage:  "Convert every document under the site's content root once",
				Action: convertAction,
				Flags: []cli.Flag{
					generatorFlag,
					forceFlag,
					&cli.BoolFlag{
						Name:  "frontmatter",
						Usage: "Also normalize frontmatter headers",
					},
				},
			},
			{
				Name:   "frontmatter",
				Usage:  "Normalize id, slug, title and last_updated headers only",
				Action: frontmatterAction,
				Flags:  []cli.Flag{generatorFlag, forceFlag},
			},
			{
				Name:   "inspect",
				Usage:  "Print a JSON link report for every document",
				Action: inspectAction,
				Flags:  []cli.Flag{generatorFlag},
			},
			{
				Name:   "serve",
				Usage:  "Convert, then watch for changes and serve the HTTP API",
				Action: serveAction,
				Flags:  []cli.Flag{generatorFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve conversion tools to MCP clients over stdio",
				Action: mcpAction,
				Flags:  []cli.Flag{generatorFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
