package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "memoro",
		Usage: "Personal CRM with unified multi-mode search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default ~/.memoro/config.yaml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search contacts and interactions",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User ID owning the data",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (term, fuzzy, semantic)",
						Value:   "term",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results (0 uses the configured default)",
					},
				},
			},
			{
				Name:   "record",
				Usage:  "Record an interaction with a contact",
				Action: recordCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User ID owning the data",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "first-name",
						Usage:    "Contact's first name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "last-name",
						Usage: "Contact's last name",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Interaction date (YYYY-MM-DD, default today)",
					},
					&cli.StringFlag{
						Name:     "notes",
						Usage:    "What happened",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "Where it happened",
					},
					&cli.StringSliceFlag{
						Name:  "family",
						Usage: "Mentioned relative as 'First[ Last]:relationship' (repeatable)",
					},
				},
			},
			{
				Name:   "backfill",
				Usage:  "Compute embeddings for interactions that are missing one",
				Action: backfillCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of interactions to process per batch (0 uses the configured default)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (0 uses the configured default)",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Apply schema files from the migrations directory",
				Action: migrateCommand,
			},
			{
				Name:   "init",
				Usage:  "Write a default config file",
				Action: initConfigCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the default slog logger from the --log-level flag
func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level: %s", c.String("log-level"))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
