package main

import (
	"github.com/urfave/cli/v3"

	"github.com/postpilot/postpilot/internal/automation"
)

const version = "0.3.0"

// root builds the command tree. Running without a subcommand opens the TUI.
func (r *Runner) root() *cli.Command {
	return &cli.Command{
		Name:    "postpilot",
		Usage:   "Drive the blog automation backend from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default ~/.config/postpilot/config.toml)",
				Sources: cli.EnvVars("POSTPILOT_CONFIG"),
			},
		},
		Action:   r.TUI,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		tuiCommand, startCommand, stopCommand, statusCommand, logsCommand, postsCommand,
		generatingCommand, credentialsCommand, generateCommand, uploadCommand, cacheCommand, diagCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive terminal UI",
		Action: r.TUI,
	}
}

func startCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start an automation run",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "keyword",
				Aliases: []string{"k"},
				Usage:   "Keyword to write about (defaults to the last keyword used)",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of posts to generate",
				Value:   automation.DefaultPostCount,
			},
		},
		Action: r.Start,
	}
}

func stopCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stop",
		Usage:  "Stop the running automation",
		Action: r.Stop,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show automation status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Follow the run until it finishes, printing new log lines",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Poll interval while watching (default from config)",
			},
			formatFlag(),
		},
		Action: r.Status,
	}
}

func logsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Print automation logs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Clear the backend log instead of printing it",
			},
			formatFlag(),
		},
		Action: r.Logs,
	}
}

func postsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "posts",
		Usage: "List generated posts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Include each post's content as markdown",
			},
			formatFlag(),
		},
		Action: r.Posts,
	}
}

func generatingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "generating",
		Usage:  "Show the post currently being generated",
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Generating,
	}
}

func credentialsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "credentials",
		Usage: "Manage the blog account used for uploads",
		Commands: []*cli.Command{
			{
				Name:  "save",
				Usage: "Save the blog account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Account ID", Required: true},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Account password",
						Sources: cli.EnvVars("POSTPILOT_NAVER_PASSWORD"),
					},
				},
				Action: r.SaveCredentials,
			},
			{
				Name:   "get",
				Usage:  "Show the saved blog account",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.GetCredentials,
			},
		},
	}
}

func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a single post outside the workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "keyword", Aliases: []string{"k"}, Usage: "Keyword to write about", Required: true},
			formatFlag(),
		},
		Action: r.Generate,
	}
}

func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a single post outside the workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Post title", Required: true},
			&cli.StringFlag{Name: "content", Usage: "Post content (HTML)"},
			&cli.StringFlag{Name: "file", Usage: "Read post content from a file"},
			&cli.BoolFlag{Name: "markdown", Usage: "Render the content as markdown before upload"},
			formatFlag(),
		},
		Action: r.Upload,
	}
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local preference cache",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print a cached value",
				ArgsUsage: "<key>",
				Action:    r.CacheGet,
			},
			{
				Name:      "set",
				Usage:     "Store a cached value",
				ArgsUsage: "<key> <value>",
				Action:    r.CacheSet,
			},
			{
				Name:      "remove",
				Usage:     "Remove a cached value",
				ArgsUsage: "<key>",
				Action:    r.CacheRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached value",
				Action: r.CacheClear,
			},
		},
	}
}

func diagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diag",
		Usage: "Print the tail of postpilot's own log file",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "lines", Aliases: []string{"n"}, Usage: "Number of lines (0 for all)", Value: 50},
			&cli.StringFlag{Name: "level", Usage: "Minimum level: debug, info, warn or error", Value: "debug"},
			&cli.BoolFlag{Name: "color", Usage: "Tint warnings and errors", Value: true},
		},
		Action: r.Diag,
	}
}
