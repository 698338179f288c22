// Package main is the entry point for the interactive portal viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/config"
	"github.com/Faultbox/portalcam/internal/logger"
	"github.com/Faultbox/portalcam/internal/scene"
	"github.com/Faultbox/portalcam/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== portalview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Scene == "" {
		logger.Error("no scene given, use -scene or set scene in the config file")
		os.Exit(1)
	}
	sc, err := scene.Load(cfg.Scene)
	if err != nil {
		logger.Error("failed to load scene", zap.String("path", cfg.Scene), zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(cfg, sc)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
