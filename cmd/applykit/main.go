package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"applykit/internal/cli"
	"applykit/internal/config"
	"applykit/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := errors.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		os.Exit(1)
	}

	logger.Debug("Starting applykit",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider,
		"store", cfg.Store.Path)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Command failed")
		os.Exit(1)
	}
}
