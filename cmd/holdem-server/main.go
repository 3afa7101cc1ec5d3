package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/server"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `kong:"short='c',default='holdem.hcl',help='Path to HCL configuration file'"`
	Debug   bool             `kong:"help='Enable debug logging'"`
	Seed    *int64           `kong:"help='Deterministic RNG seed (optional)'"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem-server"),
		kong.Description("Texas hold'em table server"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(run(&cli))
}

func run(cli *CLI) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := server.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
		logger.Info("using deterministic seed", "seed", seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, logger, quartz.NewReal(), seed)
	logger.Info("starting hold'em server",
		"addr", cfg.ListenAddress(),
		"tables", len(cfg.Tables))
	return srv.Run(ctx)
}
