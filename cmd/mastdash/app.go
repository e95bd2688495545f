package main

import (
	"log/slog"
	"os"

	"mastdash/internal/config"
	"mastdash/internal/logging"
	"mastdash/internal/pipeline"
	"mastdash/internal/sheets"
	"mastdash/internal/storage"
)

type app struct {
	cfg  config.Config
	log  *slog.Logger
	db   *storage.DB
	proc *pipeline.ProcessingService
}

// newApp loads config, applies the global flags and opens the history store when enabled.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if mastSource != "" {
		cfg.MastURL = mastSource
	}
	if dashSource != "" {
		cfg.DashURL = dashSource
	}
	if noHistory {
		cfg.HistoryEnabled = false
	}

	a := &app{cfg: cfg, log: logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)}
	if cfg.HistoryEnabled {
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.db = db
	}

	a.proc, err = pipeline.NewProcessingService(a.db, cfg, sheets.NewLoader(cfg, a.log), a.log)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// openDB is for commands that only read history.
func (a *app) openDB() (*storage.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
