package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mastdash/internal/config"
	"mastdash/internal/logging"
	"mastdash/internal/pipeline"
	"mastdash/internal/sheets"
	"mastdash/internal/storage"
	"mastdash/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	var db *storage.DB
	if cfg.HistoryEnabled {
		db, err = storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
	}

	proc, err := pipeline.NewProcessingService(db, cfg, sheets.NewLoader(cfg, log), log)
	must(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(watcher.NewService(proc, cfg, log).Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
