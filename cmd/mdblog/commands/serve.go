package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mdblog/internal/serve"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address" default:":8080"`
}

func (s *ServeCmd) Run(root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := serve.New(cfg, slog.Default())
	defer srv.Close()

	return srv.ListenAndServe(ctx, s.Addr)
}
