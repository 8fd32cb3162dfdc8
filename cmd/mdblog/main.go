package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"mdblog/cmd/mdblog/commands"
)

func main() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring .env", "error", err)
	}

	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("mdblog"),
		kong.Description("Static blog generator for a directory of markdown articles."),
		kong.UsageOnError(),
		kong.Bind(&cli),
	)
	if err := ctx.Run(); err != nil {
		slog.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
