package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"filmawards/internal/catalog"
	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/source"
	"filmawards/internal/storage"
	"filmawards/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	var fetcher source.Fetcher = source.NewWebFetcher(cfg, log)
	if strings.TrimSpace(cfg.SnapshotDir) != "" {
		fetcher = source.NewSnapshotFetcher(cfg.SnapshotDir)
	}
	var resolver watcher.Resolver
	if strings.TrimSpace(cfg.TMDBAPIKey) != "" {
		resolver = catalog.NewSyncService(db, cfg, log)
	}

	svc := watcher.NewService(db, cfg, fetcher, resolver, log)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("award watcher started", "year", cfg.WatchYear, "interval_sec", cfg.WatchIntervalSec)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
