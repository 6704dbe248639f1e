// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
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
			{
				Name:  "token",
				Usage: "Extract a bearer token from a browser cURL command",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupToken,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in to SpotiBuds via the browser OAuth flow",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Seconds to wait for the browser callback",
						Value: 180,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state (calls /me)",
				Action: r.AuthStatus,
			},
		},
	}
}

// feedCommand handles feed browsing and export operations
func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Friend feed operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Fetch and print ordered feed pages",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "pages",
						Aliases: []string{"p"},
						Usage:   "Number of pages to fetch",
						Value:   1,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Reset the session ordering before fetching",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write slides to a file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format for --output (json, csv, markdown, txt)",
						Value: "json",
					},
				},
				Action: r.FeedShow,
			},
			{
				Name:  "export",
				Usage: "Export reaction lists for feed slides concurrently",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "pages",
						Aliases: []string{"p"},
						Usage:   "Number of feed pages to export",
						Value:   1,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (json, csv, markdown, txt)",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "out-dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: buds_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second against the backend",
						Value: 5.0,
					},
				},
				Action: r.FeedExport,
			},
		},
	}
}

// reactCommand handles emoji reaction operations
func reactCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "react",
		Usage: "Send, retract, and inspect emoji reactions",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Send a reaction to a piece of content",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "content"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "emoji",
						Aliases:  []string{"e"},
						Usage:    "Emoji to send",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Identity user ID of the content author",
						Required: true,
					},
				},
				Action: r.ReactAdd,
			},
			{
				Name:  "remove",
				Usage: "Retract a previously sent reaction",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "content"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "emoji",
						Aliases:  []string{"e"},
						Usage:    "Emoji to retract",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Identity user ID of the content author",
						Required: true,
					},
				},
				Action: r.ReactRemove,
			},
			{
				Name:  "list",
				Usage: "List reactions on a piece of content",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "content"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ReactList,
			},
			{
				Name:  "log",
				Usage: "Show locally recorded reaction outcomes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "content",
						Usage: "Filter by content key",
					},
				},
				Action: r.ReactLog,
			},
		},
	}
}

// notifyCommand handles the stored notification backlog
func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "notify",
		Aliases: []string{"notifications"},
		Usage:   "Notification backlog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored notifications",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "unread",
						Usage: "Only show unread notifications",
					},
				},
				Action: r.NotifyList,
			},
			{
				Name:  "read",
				Usage: "Mark a notification as read",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.NotifyRead,
			},
		},
	}
}

// watchCommand streams realtime hub events to the terminal
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "Connect to the push channels and stream events",
		Action: r.Watch,
	}
}

// apiCommand handles direct API calls against the SpotiBuds backend
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the SpotiBuds backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive feed browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive feed browser",
		Action:  r.TUI,
	}
}
