package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantmind-br/pacfront/internal/cmd"
	"github.com/quantmind-br/pacfront/internal/config"
	"github.com/quantmind-br/pacfront/internal/logging"
	"github.com/quantmind-br/pacfront/internal/paths"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() (code int) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	crashLog := paths.NewResolver(cfg).GetCrashLog()
	defer func() {
		if c := logging.HandlePanic(recover(), crashLog); c != 0 {
			code = c
		}
	}()

	// Initialize logger
	loggers := logging.NewLoggers(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: logging.NoColorFor(cfg.Logging.Color),
	})
	defer loggers.Close()
	log := loggers.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	// Execute root command
	app := cmd.NewApp(cfg, log, version)
	app.FileLog = loggers.File
	rootCmd := cmd.NewRootCmd(app)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}
