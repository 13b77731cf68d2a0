package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"

	"holdings_backend/internal/app/cli"
	"holdings_backend/internal/app/config"
	"holdings_backend/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, os.Stderr)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, &cli.Runtime{
		Config: cfg,
		Build:  cli.Build,
		Out:    os.Stdout,
		Err:    os.Stderr,
	})

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
