package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/welcometomycity/citycore/internal/api"
	"github.com/welcometomycity/citycore/internal/bootstrap"
	"github.com/welcometomycity/citycore/internal/config"
	"github.com/welcometomycity/citycore/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.ConfigPathEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting citycore API server", zap.String("env", cfg.API.Env))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	rt, err := bootstrap.Open(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("error closing resources", zap.Error(err))
		}
	}()

	handler := api.NewHandler(rt.Store, rt.Places, rt.Cache, rt.Pool, logger.Named("http"))
	app := api.NewApp(handler, cfg)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("received shutdown signal, shutting down server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Error("error during shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("listening",
		zap.String("addr", addr),
		zap.Bool("places_configured", rt.Places.Configured()))

	if err := app.Listen(addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	logger.Info("server shut down gracefully")
}
