// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// globalFlags are inherited by every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Player base URL (overrides [player] url)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

func playlistArg() cli.Argument {
	return &cli.StringArg{Name: "playlist", UsageText: "playlist id, title or position (default: current)"}
}

func playlistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "playlist",
		Aliases: []string{"p"},
		Usage:   "Playlist id, title or position (default: the player's current playlist)",
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand handles setup operations for the journal database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the snapshot journal and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the latest journal migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "config",
				Usage:  "Write an example configuration file",
				Action: r.SetupConfig,
			},
		},
	}
}

// playlistsCommand handles playlist operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists in player order",
				Flags:  jsonFlags(),
				Action: r.PlaylistsList,
			},
			{
				Name:      "add",
				Usage:     "Create a playlist (default title: New Playlist)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a playlist",
				Arguments: []cli.Argument{playlistArg()},
				Action:    r.PlaylistsRemove,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				Arguments: []cli.Argument{playlistArg(), &cli.StringArg{Name: "title"}},
				Action:    r.PlaylistsRename,
			},
			{
				Name:      "clear",
				Usage:     "Remove every item from a playlist",
				Arguments: []cli.Argument{playlistArg()},
				Action:    r.PlaylistsClear,
			},
		},
	}
}

// itemsCommand handles playlist item operations
func itemsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Playlist item operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a playlist's items",
				Flags: []cli.Flag{
					playlistFlag(),
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Request only artist and title",
					},
					&cli.StringFlag{
						Name:  "range",
						Usage: "Item range as offset:count",
						Value: "0:1000",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv, markdown, json",
						Value:   "text",
					},
				},
				Action: r.ItemsList,
			},
			{
				Name:      "add",
				Usage:     "Append files or URLs to a playlist",
				ArgsUsage: "<path-or-url>...",
				Flags:     []cli.Flag{playlistFlag()},
				Action:    r.ItemsAdd,
			},
			{
				Name:  "play",
				Usage: "Start playback of an item",
				Flags: []cli.Flag{
					playlistFlag(),
					&cli.IntFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Zero-based item index",
					},
				},
				Action: r.ItemsPlay,
			},
		},
	}
}

// watchCommand follows the update stream
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow playlist and item changes as the player pushes them",
		Flags: []cli.Flag{
			playlistFlag(),
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Request only artist and title",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "Journal every snapshot to the database",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Write one JSON object per change",
			},
		},
		Action: r.Watch,
	}
}

// historyCommand lists journaled snapshots
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show snapshots recorded by 'watch --record'",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "topic",
				Usage: "Filter by topic: playlists or playlistItems",
			},
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Filter by selected playlist id",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Show only the most recent snapshots",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "show",
				Usage: "Print the payload of the snapshot with this id",
			},
		}, jsonFlags()...),
		Action: r.History,
	}
}

// exportCommand writes playlists to files
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export playlists' items to files (all playlists when none are named)",
		ArgsUsage: "[playlist...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: text, csv, markdown, json (default: [export] format)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: playlist_export_{epoch})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers (default: [export] workers)",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Player requests per second (default: [export] rate_limit)",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Export only artist and title",
			},
		},
		Action: r.Export,
	}
}

// apiCommand handles direct player API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the player API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the JSON response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with an optional JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// serveCommand runs the stub player
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run an in-memory stub player for development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: [server] host:port)",
			},
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "Seed the player with demo playlists",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing and editing playlists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Start with only artist and title",
			},
		},
		Action: r.TUI,
	}
}

// openCommand opens the player's web UI
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "open",
		Usage:  "Open the player's web UI in the browser",
		Action: r.Open,
	}
}
