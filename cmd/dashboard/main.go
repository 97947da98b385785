// Command dashboard serves the content dashboard for a single local session.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/inkwell/dashboard/internal/api"
	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
	"github.com/inkwell/dashboard/internal/core/service"
	"github.com/inkwell/dashboard/internal/infrastructure/config"
	"github.com/inkwell/dashboard/internal/infrastructure/db/file"
	mongostore "github.com/inkwell/dashboard/internal/infrastructure/db/mongo"
	redisstore "github.com/inkwell/dashboard/internal/infrastructure/db/redis"
	"github.com/inkwell/dashboard/internal/infrastructure/queue"
	"github.com/inkwell/dashboard/internal/infrastructure/remote"
	"github.com/inkwell/dashboard/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Inkwell Dashboard API
// @version      1.0
// @description  Session, dashboard and content endpoints of the content dashboard.
// @BasePath     /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile, listen, logLevel string

	flagSet := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")
	flagSet.StringVar(&listen, "listen", "", "listen address (overrides DASHBOARD_LISTEN)")
	flagSet.StringVar(&logLevel, "log-level", "", "trace, debug, info, warn or error (overrides LOG_LEVEL)")
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
		cfg.Dashboard.Listen = listen
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "dashboard",
	})

	store, closeStore, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	events := queue.NewBroadcaster(log)
	defer events.Close()

	validator := service.NewFormValidator()
	session := service.NewSessionController(service.SessionControllerOptions{
		Gateway:   remote.NewAuthGateway(client),
		Roles:     remote.NewRoleResolver(client),
		Store:     store,
		Events:    events,
		Validator: validator,
		Timeout:   cfg.API.Timeout,
		Logger:    log,
	})
	content := service.NewContentService(remote.NewContentClient(client), session, validator, log)

	updates, unsubscribe := session.Subscribe(8)
	defer unsubscribe()
	go logTransitions(ctx, updates, log)

	st := session.Initialize(ctx)
	log.Info().
		Str("status", string(st.Status)).
		Str("role", st.Role().String()).
		Str("api", client.BaseURL()).
		Str("session_backend", cfg.Session.Backend).
		Msg("session initialized")

	e := api.NewRouter(api.Deps{
		Session: session,
		Content: content,
		Checks: map[string]ports.Pinger{
			"session_store": store,
			"remote_api":    client,
		},
		LoginRateLimit: cfg.Dashboard.LoginRateLimit,
		Logger:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Dashboard.Listen).Msg("dashboard listening")
		if err := e.Start(cfg.Dashboard.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard server: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

type sessionStore interface {
	ports.SessionStore
	ports.Pinger
}

// openSessionStore connects the configured backend. The returned func
// releases its connection.
func openSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (sessionStore, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addrs:      redisstore.SplitAddrs(cfg.Redis.Addr),
			MasterName: cfg.Redis.MasterName,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewSessionStore(rdb, cfg.Session.KeyPrefix, log), func() { _ = rdb.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "inkwell-dashboard",
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		key := strings.TrimSuffix(cfg.Session.KeyPrefix, ":")
		return mongostore.NewSessionStore(db, key, log), closeFn, nil

	default:
		return file.NewSessionStore(cfg.Session.File, log), func() {}, nil
	}
}

func logTransitions(ctx context.Context, updates <-chan domain.SessionState, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			log.Debug().
				Str("status", string(st.Status)).
				Bool("authenticated", st.IsAuthenticated).
				Uint64("version", st.Version).
				Msg("session state")
		}
	}
}
