package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/starford/taskparser/internal"
	"github.com/starford/taskparser/internal/render"
	pkgconfig "github.com/starford/taskparser/pkg/config"
)

// loadConfig reads the optional config file and applies the flags that were
// set explicitly. The positional argument, if any, is the vault path.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if path := cmd.Args().First(); path != "" {
		cfg.Vault.Path = path
	}
	if cmd.IsSet("log-level") {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	if cmd.IsSet("tags") {
		cfg.Query.Tags = cmd.String("tags")
	}
	if cmd.IsSet("filter") {
		cfg.Query.Filter = cmd.String("filter")
	}
	if cmd.IsSet("sort") {
		cfg.Query.Sort = cmd.String("sort")
	}
	if cmd.IsSet("out") {
		cfg.Query.Output = cmd.String("out")
	}
	if cmd.IsSet("worklogs") {
		cfg.Query.Worklogs = cmd.Bool("worklogs")
	}
	if cmd.IsSet("columns") {
		cfg.Render.Columns = int(cmd.Int("columns"))
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// terminal reports whether stdout is a terminal and, if so, its width.
func terminal() (bool, int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return false, 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return true, 0
	}
	return true, width
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	interactive, columns := terminal()

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithTerminal(interactive, columns),
		internal.WithWatch(cmd.Bool("watch")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("serve error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp error: %w", err)
	}
	return nil
}

func createToday(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	title := strings.Join(cmd.Args().Slice(), " ")

	p, err := internal.Today(ctx, title, cmd.String("dir"), internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Println(p)
	return nil
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to an optional config file",
		Value:   "taskparser.yaml",
		Sources: cli.EnvVars("TASKPARSER_CONFIG"),
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Sources: cli.EnvVars("TASKPARSER_LOG_LEVEL"),
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		logLevelFlag(),
		&cli.StringFlag{
			Name:        "tags",
			Aliases:     []string{"t"},
			Usage:       "Comma-separated tags to show",
			DefaultText: "text,checked,file,date",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "Filter expression, e.g. checked(=false),date(>=20240301)",
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "Sort expression, e.g. date(desc),text(asc)",
		},
		&cli.BoolFlag{
			Name:    "worklogs",
			Aliases: []string{"W"},
			Usage:   "List worklogs instead of tasks",
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "Output format (" + strings.Join(render.Formats, ", ") + ")",
			DefaultText: "table",
		},
		&cli.IntFlag{
			Name:  "columns",
			Usage: "Table width in terminal columns (default: the terminal width)",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:      "taskparser",
		Usage:     "List tasks and worklogs from a tree of Markdown files",
		ArgsUsage: "[path]",
		Action:    run,
		Flags: append(queryFlags(), &cli.BoolFlag{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "Re-render whenever a file changes",
		}),
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Serve tasks and worklogs over HTTP with live updates",
				ArgsUsage: "[path]",
				Action:    serve,
				Flags: append(queryFlags(), &cli.IntFlag{
					Name:    "port",
					Usage:   "HTTP port",
					Sources: cli.EnvVars("TASKPARSER_PORT"),
				}),
			},
			{
				Name:      "mcp",
				Usage:     "Serve tasks and worklogs to MCP clients on stdio",
				ArgsUsage: "[path]",
				Action:    serveMCP,
				Flags:     queryFlags(),
			},
			{
				Name:      "today",
				Usage:     "Create today's worklog file",
				ArgsUsage: "<title>",
				Action:    createToday,
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Folder below the vault for the new file",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
