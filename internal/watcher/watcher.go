package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"mastdash/internal/config"
	"mastdash/internal/logging"
	"mastdash/internal/pipeline"
)

// Service reloads both sheets on an interval, reruns the configured query and writes the
// configured report formats.
type Service struct {
	proc *pipeline.ProcessingService
	cfg  config.Config
	log  *slog.Logger
	now  func() time.Time
}

type CycleResult struct {
	RunID  int
	Result pipeline.Result
	Files  []string
}

func NewService(proc *pipeline.ProcessingService, cfg config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{proc: proc, cfg: cfg, log: logger, now: time.Now}
}

// Run loops until ctx is cancelled. Cycle errors are logged and the loop keeps going.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.WatchClass == 0 || s.cfg.WatchSize == 0 {
		return fmt.Errorf("WATCH_CLASS and WATCH_SIZE are required")
	}
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	for {
		if res, err := s.RunCycle(ctx); err != nil {
			s.log.Error("watch cycle failed", "err", err)
		} else {
			s.log.Info("watch cycle done", "run_id", res.RunID, "rows", len(res.Result.Rows), "files", len(res.Files))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle performs one fresh load, query and export.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	if _, err := s.proc.Load(ctx); err != nil {
		return CycleResult{}, err
	}

	res, runID, err := s.proc.Run(pipeline.Query{Class: s.cfg.WatchClass, Size: s.cfg.WatchSize})
	if err != nil {
		return CycleResult{}, err
	}
	out := CycleResult{RunID: runID, Result: res}
	if !res.OK() {
		return out, fmt.Errorf("query class=%d size=%d: %s", s.cfg.WatchClass, s.cfg.WatchSize, res.Reason())
	}

	meta := pipeline.MetaFor(res, s.cfg.FOSValveMin, s.cfg.FOSActuatorMin)
	meta.GeneratedAt = s.now()
	for _, format := range s.cfg.WatchFormats {
		path := filepath.Join(s.cfg.OutputDir, "watch", pipeline.DefaultFilename(format, meta.GeneratedAt))
		if err := pipeline.Export(format, res.Rows, meta, path); err != nil {
			return out, fmt.Errorf("export %s: %w", format, err)
		}
		out.Files = append(out.Files, path)
	}
	return out, nil
}
