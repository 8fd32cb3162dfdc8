package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mdblog/internal/build"
	"mdblog/internal/domain/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides build.public_dir)"`
}

func (b *BuildCmd) Run(root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Output != "" {
		cfg.Build.PublicDir = b.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = RunBuild(ctx, cfg, slog.Default())
	return err
}

func RunBuild(ctx context.Context, cfg config.Config, logger *slog.Logger) (*build.Result, error) {
	b := &build.Builder{Cfg: cfg, Logger: logger}
	res, err := b.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("build failed: %w", err)
	}
	return res, nil
}
