// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Command server runs the Sportline API: session-authenticated,
// rate-limited, cache-fronted HTTP endpoints serving articles, matches,
// teams, videos and the social features around them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/sportlinehq/sportline/internal/api"
	"github.com/sportlinehq/sportline/internal/auth"
	"github.com/sportlinehq/sportline/internal/cache"
	"github.com/sportlinehq/sportline/internal/config"
	"github.com/sportlinehq/sportline/internal/kv"
	"github.com/sportlinehq/sportline/internal/logging"
	"github.com/sportlinehq/sportline/internal/middleware"
	"github.com/sportlinehq/sportline/internal/ratelimit"
	"github.com/sportlinehq/sportline/internal/router"
	"github.com/sportlinehq/sportline/internal/server"
	"github.com/sportlinehq/sportline/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting Sportline API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kvPath := ""
	if cfg.Data.Dir != "" {
		kvPath = filepath.Join(cfg.Data.Dir, "kv")
		if err := os.MkdirAll(kvPath, 0o750); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	kvStore, err := kv.NewBadgerStore(kvPath)
	if err != nil {
		return err
	}
	defer kvStore.Close()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions := auth.NewKVSessionStore(kvStore)
	authn := auth.NewAuthenticator(sessions, st.Users())
	limiter := ratelimit.NewLimiter(kvStore)
	responseCache := cache.New(kvStore)

	rt := router.New(cfg.Server.BasePath)
	handlers := api.NewHandlers(st, authn, responseCache, cfg.Auth.SessionTTL)
	err = handlers.Register(rt, limiter, api.Limits{
		Global:       cfg.RateLimit.Global,
		GlobalWindow: cfg.RateLimit.GlobalWindow,
		Login:        cfg.RateLimit.Login,
		LoginWindow:  cfg.RateLimit.LoginWindow,
		Write:        cfg.RateLimit.Write,
		WriteWindow:  cfg.RateLimit.WriteWindow,
	})
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	handler := entrypoint(rt)

	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
	supervisor := suture.New("sportline", suture.Spec{EventHook: hook})
	supervisor.Add(server.NewHTTPService(cfg.Server.Addr(), handler,
		cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout))
	supervisor.Add(server.NewMaintenanceService(cfg.Maintenance.Interval,
		limiter, sessions, responseCache))

	err = supervisor.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}

// entrypoint builds the middleware chain outside the route table. The
// outer recovery boundary catches panics escaping the pipeline itself and
// tags them FATAL_ERROR; handler panics are caught by the inner boundary
// as INTERNAL_ERROR.
func entrypoint(rt *router.Router) http.Handler {
	handler := middleware.Recover(middleware.CodeInternalError)(rt)
	handler = middleware.CORS(handler)
	handler = middleware.AccessLog(handler)
	handler = middleware.RequestID(handler)
	return middleware.Recover(middleware.CodeFatalError)(handler)
}

// openStore picks the repository backend: Postgres when a DSN is
// configured, the in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Data.PostgresDSN != "" {
		st, err := store.NewPostgresStore(ctx, cfg.Data.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logging.Info().Msg("Using Postgres store")
		return st, nil
	}
	logging.Warn().Msg("No Postgres DSN configured; using volatile in-memory store")
	return store.NewMemoryStore(), nil
}
