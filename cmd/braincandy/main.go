package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"BrainCandy/internal/app"
	"BrainCandy/internal/config"
	"BrainCandy/internal/logging"
)

type options struct {
	Mode    string `long:"mode" short:"m" env:"BRAINCANDY_MODE" default:"scheduled" choice:"training" choice:"production" choice:"scheduled" choice:"once" choice:"refill" choice:"drain" choice:"discover" description:"Run mode"`
	Config  string `long:"config" short:"c" env:"BRAINCANDY_CONFIG" description:"Path to the YAML config file"`
	EnvFile string `long:"env-file" default:".env" description:"Dotenv file loaded before the config"`
	Count   int    `long:"count" short:"n" description:"Number of posts for drain mode (defaults to curation.drainCount)"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// A missing default .env is fine.
	_ = godotenv.Load()

	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}

	if opts.EnvFile != "" && opts.EnvFile != ".env" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Run(ctx, opts.Mode, opts.Count); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}
