package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/taskparser/internal/api"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/mcpserver"
	"github.com/starford/taskparser/internal/parser"
	"github.com/starford/taskparser/internal/query"
	"github.com/starford/taskparser/internal/sse"
	"github.com/starford/taskparser/internal/storage"
	"github.com/starford/taskparser/internal/today"
	"github.com/starford/taskparser/internal/watch"
)

// Serve parses the vault, keeps it in sync with a watcher and serves the
// items over HTTP until ctx is cancelled or a termination signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	defaults, err := cfg.Request()
	if err != nil {
		return err
	}
	if _, err := query.Compile(defaults); err != nil {
		return fmt.Errorf("default query: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	items := item.NewCollection()
	p := parser.New(store, items, logger)
	if err := p.Sync(ctx); err != nil {
		return fmt.Errorf("parse vault: %w", err)
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := query.NewService(items)
	apiRouter := api.NewRouter(svc, defaults, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, p, store, logger, broker.PublishFileEvent)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		waitForSignal(gCtx, logger)
		cancel()

		logger.Info("Shutting down server...")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP parses the vault and serves the MCP tools on stdin/stdout. A
// watcher keeps the items current while the session lasts.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.newLogger()

	defaults, err := cfg.Request()
	if err != nil {
		return err
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	items := item.NewCollection()
	p := parser.New(store, items, logger)
	if err := p.Sync(ctx); err != nil {
		return fmt.Errorf("parse vault: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := watch.Watch(ctx, p, store, logger, nil); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
	}()

	srv := mcpserver.New(store, query.NewService(items), p, defaults)
	logger.Info("Starting MCP server on stdio", slog.String("vault_path", cfg.Vault.Path))
	return srv.ServeStdio()
}

// Today creates the daily worklog file for title in dir below the vault
// and returns its vault path.
func Today(ctx context.Context, title, dir string, opts ...Option) (string, error) {
	app := newApplication(opts)
	if app.config == nil {
		return "", fmt.Errorf("config is required")
	}
	logger := app.newLogger()

	store, err := storage.NewFS(app.config.Vault.Path)
	if err != nil {
		return "", fmt.Errorf("init storage: %w", err)
	}
	p, err := today.Create(store, dir, app.now(), title)
	if err != nil {
		return p, err
	}
	logger.Debug("created daily file", slog.String("path", p))
	return p, nil
}
