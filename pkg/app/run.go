// Package app provides the shared entry point for the covbot CLI and the
// system-service wrapper.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/flemzord/covbot/internal/config"
	"github.com/flemzord/covbot/internal/covid"
	"github.com/flemzord/covbot/internal/cron"
	"github.com/flemzord/covbot/internal/gateway"
	"github.com/flemzord/covbot/internal/messaging"
	"github.com/flemzord/covbot/internal/query"
	"github.com/flemzord/covbot/internal/snapshot"
	"github.com/flemzord/covbot/internal/telemetry"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, opens the snapshot store, starts the scheduler
// and the HTTP gateway, and blocks until ctx is cancelled or the server
// fails. A store that cannot be opened is fatal: the process refuses to
// serve jobs or the webhook without working persistence.
func Run(ctx context.Context, params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	}))
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, params.Version, logger)
	if err != nil {
		return err
	}

	store, db, err := snapshot.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	metrics := telemetry.NewMetrics()
	source := covid.NewClient(cfg.DataSource.BaseURL)
	sender := messaging.NewTwilio(cfg.Messaging)
	calculator := query.NewCalculator(source, logger)

	scheduler := cron.NewScheduler(logger)
	jobs := []cron.Job{
		&cron.IngestJob{
			Source:       source,
			Store:        store,
			Metrics:      metrics,
			Logger:       logger,
			ScheduleExpr: cfg.Jobs.IngestSchedule,
		},
		&cron.PurgeJob{
			Store:        store,
			Metrics:      metrics,
			Logger:       logger,
			ScheduleExpr: cfg.Jobs.PurgeSchedule,
		},
	}
	for _, j := range jobs {
		if err := scheduler.RegisterJob(j); err != nil {
			return err
		}
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	gw := gateway.New(calculator, sender, store, metrics, logger)
	server := &http.Server{
		Addr:         cfg.Gateway.Listen,
		Handler:      gw.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("gateway: listening", "addr", cfg.Gateway.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		logger.Error("gateway: server failed", "error", err)
		_ = scheduler.Stop(context.Background())
		_ = shutdownTracing(context.Background())
		return err
	}

	if err := scheduler.Stop(context.Background()); err != nil {
		logger.Error("scheduler stop failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway: shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("telemetry: trace flush failed", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/covbot/covbot.yaml → ./covbot.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "covbot", "covbot.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "covbot", "covbot.yaml"))
	}

	candidates = append(candidates, "covbot.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
