package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/topicatlas/internal/config"
	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/export"
	"github.com/example/topicatlas/internal/httpapi"
	"github.com/example/topicatlas/internal/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With(zap.String("version", version))
	defer func() { _ = logger.Sync() }()

	loader, err := dataset.NewLoader(cfg.Schema, cfg.Encodings, logger.Named("dataset"))
	if err != nil {
		logger.Fatal("invalid dataset configuration", zap.Error(err))
	}
	cache := dataset.NewCache(loader)

	// A dataset that cannot be loaded is fatal for the session.
	if cfg.Preload {
		if _, err := cache.Get(context.Background(), cfg.DataPath); err != nil {
			logger.Fatal("failed to load dataset", zap.String("path", cfg.DataPath), zap.Error(err))
		}
	}

	exports := export.NewManager(cfg.ExportDir)
	router := httpapi.NewRouter(cfg, cache, exports, logger.Named("http"))

	srv := &http.Server{Addr: cfg.Bind, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Bind), zap.String("data", cfg.DataPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s == syscall.SIGHUP {
			cache.Invalidate(cfg.DataPath)
			if _, err := cache.Get(context.Background(), cfg.DataPath); err != nil {
				logger.Error("dataset reload failed", zap.Error(err))
			} else {
				logger.Info("dataset reloaded", zap.String("path", cfg.DataPath))
			}
			continue
		}
		break
	}

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}
