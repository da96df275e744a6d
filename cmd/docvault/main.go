// Command docvault serves encrypted document storage over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/docvault/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "docvault: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg Config
	if err := loadConfig(configPath, &cfg); err != nil {
		return err
	}

	logger, err := log.FromConfig(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	log.SetGlobalLogger(logger)

	gin.SetMode(cfg.HTTP.Mode)

	application, err := build(context.Background(), &cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to assemble docvault")
		return err
	}

	logger.Info().
		Str("keys", cfg.Keys.Backend).
		Str("blob", cfg.Blob.Backend).
		Str("repository", cfg.Repository.Backend).
		Bool("kafka", cfg.Kafka.Enabled).
		Bool("rate_limit", cfg.RateLimit.Enabled).
		Msg("docvault starting")

	return application.Start()
}
