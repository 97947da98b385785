// Command devapi runs an in-memory stand-in for the remote auth, role and
// content service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/inkwell/dashboard/internal/devapi"
	"github.com/inkwell/dashboard/internal/infrastructure/config"
	"github.com/inkwell/dashboard/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile, listen, logLevel, seedFile string

	flagSet := pflag.NewFlagSet("devapi", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")
	flagSet.StringVar(&listen, "listen", "", "listen address (overrides DEVAPI_LISTEN)")
	flagSet.StringVar(&logLevel, "log-level", "", "trace, debug, info, warn or error (overrides LOG_LEVEL)")
	flagSet.StringVar(&seedFile, "seed", "", "YAML seed file (overrides DEVAPI_SEED_FILE)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx, envFile)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.DevAPI.Listen = listen
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if seedFile != "" {
		cfg.DevAPI.SeedFile = seedFile
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "devapi",
	})

	seed := devapi.DefaultSeed()
	if cfg.DevAPI.SeedFile != "" {
		if seed, err = devapi.LoadSeed(cfg.DevAPI.SeedFile); err != nil {
			return err
		}
	}

	store := devapi.NewMemoryStore()
	auth := devapi.NewAuthService(store, cfg.DevAPI.JWTSecret, cfg.DevAPI.TokenTTL)
	if err := seed.Apply(ctx, auth, store); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info().
		Int("users", len(seed.Users)).
		Int("contents", len(seed.Contents)).
		Msg("dev api seeded")

	e := devapi.NewRouter(auth, store, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.DevAPI.Listen).Msg("dev api listening")
		if err := e.Start(cfg.DevAPI.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dev api server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
