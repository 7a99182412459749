package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"chronicle/internal/config"
	"chronicle/internal/daemon"
	"chronicle/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	registry := logging.NewRegistryFromConfig(cfg)
	logger := registry.GetOrCreate(cfg.Service)

	d, err := daemon.New(cfg, registry)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info(context.Background(), "chronicled shutting down")
}
