package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/internal/cli"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// @title           Capture Stitcher API
// @version         1.0
// @description     Rebuilds meeting recordings from capture event logs and media chunks
// @BasePath        /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	return cli.NewRootCmd(&cli.Dependencies{
		Config: cfg,
		Logger: logger,
	}).Execute()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
