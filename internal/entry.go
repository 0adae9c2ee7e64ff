// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/taskparser/internal/apperr"
	"github.com/starford/taskparser/internal/item"
	"github.com/starford/taskparser/internal/parser"
	"github.com/starford/taskparser/internal/query"
	"github.com/starford/taskparser/internal/render"
	"github.com/starford/taskparser/internal/storage"
	"github.com/starford/taskparser/internal/watch"
)

// clearScreen resets the terminal before each watch-mode render.
const clearScreen = "\x1bc"

// Run parses the vault once and writes the configured listing. With
// WithWatch it keeps re-rendering after every change until ctx is cancelled
// or a termination signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := app.newLogger()

	q, err := app.compileQuery()
	if err != nil {
		return err
	}
	if app.watch && !app.interactive {
		return fmt.Errorf("watch: %w", apperr.ErrNotInteractive)
	}

	logger.Debug("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("kind", q.Kind.String()),
		slog.String("format", string(q.Format)),
		slog.Int("columns", q.Options.Columns))

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	items := item.NewCollection()
	p := parser.New(store, items, logger)
	if err := p.Sync(ctx); err != nil {
		return fmt.Errorf("parse vault: %w", err)
	}
	svc := query.NewService(items)

	if !app.watch {
		return svc.Render(ctx, app.out, q)
	}

	redraw := func() {
		fmt.Fprint(app.out, clearScreen)
		if err := svc.Render(ctx, app.out, q); err != nil {
			logger.Error("render failed", slog.String("error", err.Error()))
		}
	}
	redraw()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, p, store, logger, func(kind, path string) {
			logger.Debug("vault changed", slog.String("kind", kind), slog.String("path", path))
			redraw()
		})
	})

	g.Go(func() error {
		waitForSignal(gCtx, logger)
		cancel()
		return nil
	})

	return g.Wait()
}

// compileQuery builds the listing from the config and applies the terminal
// width when none was configured.
func (a *application) compileQuery() (*query.Query, error) {
	req, err := a.config.Request()
	if err != nil {
		return nil, err
	}
	q, err := query.Compile(req)
	if err != nil {
		return nil, err
	}
	if q.Format == render.FormatTable && q.Options.Columns == 0 && a.interactive && a.columns > 0 {
		q = q.WithColumns(a.columns)
	}
	return q, nil
}

// newLogger builds the JSON logger and installs it as the default.
func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// waitForSignal blocks until SIGINT, SIGTERM or ctx is done.
func waitForSignal(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
