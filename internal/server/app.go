// Package server initializes and runs the application server: database with
// migrations, object-storage presigner, REST API, websocket hub and the
// Redis status feed, with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medialift/medialift/internal/logging"
	"github.com/medialift/medialift/internal/server/config"
	"github.com/medialift/medialift/internal/server/httpapi"
	"github.com/medialift/medialift/internal/server/repositories/repomanager"
	"github.com/medialift/medialift/internal/server/storage"
	"github.com/medialift/medialift/internal/server/ws"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	rdb    *redis.Client
	hub    *ws.Hub
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	return &App{
		config: cfg,
		logger: logger,
		repos:  rm,
		rdb:    rdb,
		hub:    ws.NewHub(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	presigner := storage.NewPresigner(app.config)
	handler := httpapi.NewHandler(app.config, app.repos, presigner, app.logger)
	wsHandler := ws.NewHandler(app.hub, app.repos.Jobs(), []byte(app.config.SecretKey), app.logger)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: handler.Router(wsHandler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startStatusFeed(ctx context.Context) {
	feed := ws.NewFeed(app.rdb, app.config.RedisStatusChannel, app.hub, app.repos.Jobs(), app.logger)
	if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		app.logger.Error(ctx, "status feed stopped", "error", err)
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repos.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startStatusFeed(ctx)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if err := app.rdb.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}

	return nil
}
