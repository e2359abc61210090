// Command muraaid is the muraai daemon: it serves the HTTP API and
// processes pending heritage items in the background.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"muraai/internal/config"
	"muraai/internal/daemon"
	"muraai/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			log.Fatalf("muraaid is already running")
		}
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited", logging.Error(err))
		return
	}
	logger.Info("muraaid shut down")
}
