package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"CapIot.readings/internal/app"
	"CapIot.readings/internal/config"
	"CapIot.readings/internal/logging"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	if !cfg.DotEnvLoaded {
		logger.Info("no .env file found, using environment")
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise application", zap.Error(err))
	}
	defer application.Close()

	logger.Info("server is running", zap.String("url", cfg.BaseURL))
	if err := application.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
