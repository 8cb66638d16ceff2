package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchan-dev/agora/backend/internal/router"
	"github.com/itchan-dev/agora/backend/internal/setup"
	"github.com/itchan-dev/agora/shared/config"
	"github.com/itchan-dev/agora/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Log.Error("failed to release dependencies", "error", err)
		}
	}()

	if cfg.Public.SweepInterval > 0 {
		deps.Sweeper.StartBackgroundSweep(ctx, cfg.Public.SweepInterval)
	}

	srv := &http.Server{
		Addr:         cfg.Public.ListenAddr,
		Handler:      router.New(deps),
		ReadTimeout:  cfg.Public.ReadTimeout,
		WriteTimeout: cfg.Public.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "addr", srv.Addr, "storage", cfg.Public.StorageKind, "notify", cfg.Public.NotifyKind)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
		}
		return
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Public.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}
