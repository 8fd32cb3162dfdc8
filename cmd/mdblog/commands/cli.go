package commands

import (
	"log/slog"
	"os"

	"mdblog/internal/domain/config"
)

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"site.yaml" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build BuildCmd `cmd:"" help:"Generate the site into the public directory"`
	Serve ServeCmd `cmd:"" help:"Build, serve and rebuild on changes"`
	Init  InitCmd  `cmd:"" help:"Create a configuration file, templates and a first article"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig reads the configuration file, falling back to defaults when it
// does not exist.
func (c *CLI) LoadConfig() (config.Config, error) {
	return config.LoadOrDefault(c.Config)
}
