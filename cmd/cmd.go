// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser (PKCE, no client secret)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored access token and cached snapshots",
				Action: r.AuthLogout,
			},
		},
	}
}

// topCommand renders a listening snapshot in the terminal or exports it to a file.
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show your top artists, tracks, albums, and genres",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "category",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   "Time range: short, medium, or long",
				Value:   "medium",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Items per category",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv, or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the snapshot to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:    "refresh",
				Aliases: []string{"no-cache"},
				Usage:   "Bypass the snapshot cache and fetch fresh data",
			},
		},
		Action: r.Top,
	}
}

// cacheCommand manages the local snapshot cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached snapshots",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached snapshot count and age",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached snapshots",
				Action: r.CacheClear,
			},
		},
	}
}

// serveCommand runs the local web view.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the snapshot web view locally",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (defaults to server.port from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing snapshots interactively.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI snapshot browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "range",
				Aliases: []string{"r"},
				Usage:   "Time range: short, medium, or long",
				Value:   "medium",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Items per category",
				Value:   20,
			},
		},
		Action: r.TUI,
	}
}
