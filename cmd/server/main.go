// Package main implements the entry point for the IntelliCard API server,
// which serves flashcard collections, spaced repetition study and
// LLM-backed card generation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/platform/logger"
	"github.com/stefanvasilev2002/intellicard/internal/platform/postgres"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
)

// cliOptions holds the flags that are not configuration keys.
type cliOptions struct {
	configFile string
	envFile    string
	migrate    string
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "intellicard: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses args. The returned flag set is bound to config keys by
// config.LoadWithOptions.
func parseFlags(args []string, output io.Writer) (*pflag.FlagSet, cliOptions, error) {
	var opts cliOptions

	flags := pflag.NewFlagSet("intellicard", pflag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&opts.configFile, "config", "", "path to a config file (default: ./config.yaml if present)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&opts.migrate, "migrate", "", "run a migration command (up, down, status) and exit")
	flags.Int("port", 0, "HTTP listen port")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	if err := flags.Parse(args); err != nil {
		return nil, cliOptions{}, err
	}

	switch opts.migrate {
	case "", postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus:
	default:
		return nil, cliOptions{}, fmt.Errorf("unknown migration command %q", opts.migrate)
	}

	return flags, opts, nil
}

func run(args []string, output io.Writer) error {
	flags, opts, err := parseFlags(args, output)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
		Flags:      flags,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("generation_enabled", cfg.LLM.GeminiAPIKey != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if opts.migrate != "" {
		defer closeDB(db, log)
		return postgres.Migrate(ctx, db, opts.migrate, log)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		closeDB(db, log)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("server stopped with error", slog.String("error", redact.Error(err)))
		return err
	}
	return nil
}
