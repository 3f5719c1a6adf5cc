package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"headless-cms-backend/pkg/config"
	"headless-cms-backend/pkg/database"
)

// App bundles the long-lived pieces of a running service.
type App struct {
	Config  *config.Config
	Log     *zap.SugaredLogger
	DB      *database.DB
	Handler http.Handler
}

// DatabaseConfig derives the storage settings from cfg.
func DatabaseConfig(cfg *config.Config) database.DatabaseConfig {
	return database.DatabaseConfig{
		Driver:       cfg.DatabaseDriver,
		DSN:          cfg.DatabaseURL,
		SQLitePath:   cfg.SQLitePath,
		MaxOpenConns: cfg.MaxOpenConns,
		Debug:        cfg.Debug,
	}
}

// NewApp validates cfg, opens storage, applies the schema and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	db, err := database.Open(ctx, DatabaseConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Handler: NewRouter(cfg, log, db),
	}, nil
}

// Close releases the storage handle.
func (a *App) Close() error {
	return a.DB.Close()
}

// ListenAndServe serves until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Infow("server listening", "addr", addr, "environment", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.Log.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
