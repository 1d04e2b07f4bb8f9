package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"docqa"
	"docqa/common/logger"
	"docqa/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
		Dev:   cfg.Logging.Dev,
	})
	defer logger.Sync()

	srv, _, err := docqa.NewServer("docqa", cfg)
	if err != nil {
		logger.Errorf("server setup failed: %v", err)
		os.Exit(1)
	}

	logger.Infof("docqa %s serving on stdio, backend=%s", docqa.Version, cfg.Backend.Provider)
	if err := server.ServeStdio(srv); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
