package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"mastdash/internal"
	"mastdash/internal/config"
	"mastdash/internal/logging"
	"mastdash/internal/storage"
)

const metaLastLoad = "sheets.last_load"

// ProcessingService ties a session to its sources and, when a database is given, records
// every load and query in the run history.
type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	loader  GridLoader
	session *Session
	log     *slog.Logger

	loadID *int
}

func NewProcessingService(db *storage.DB, cfg config.Config, loader GridLoader, logger *slog.Logger) (*ProcessingService, error) {
	policy, err := ParseVerifyPolicy(cfg.VerifyPolicy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ProcessingService{
		db:      db,
		cfg:     cfg,
		loader:  loader,
		session: NewSession(policy, logger),
		log:     logger,
	}, nil
}

func (s *ProcessingService) Session() *Session {
	return s.session
}

// Load reloads both configured sources and records the load.
func (s *ProcessingService) Load(ctx context.Context) (LoadSummary, error) {
	summary, err := s.session.Reload(ctx, s.loader, s.cfg.MastURL, s.cfg.DashURL)
	if err != nil {
		return LoadSummary{}, err
	}
	if s.db == nil {
		s.loadID = nil
		return summary, nil
	}

	id, err := s.db.InsertLoad(internal.LoadRecord{
		MastSource:     summary.MastSource,
		DashSource:     summary.DashSource,
		MastHash:       summary.Mast.Hash,
		DashHash:       summary.Dash.Hash,
		MastRows:       summary.MastRows,
		DashRows:       summary.DashRows,
		TrimEntries:    summary.TrimEntries,
		ValveTorque:    summary.Torques.Valve,
		ActuatorTorque: summary.Torques.Actuator,
	})
	if err != nil {
		return summary, fmt.Errorf("record load: %w", err)
	}
	s.loadID = &id
	_ = s.db.SetMetadata(metaLastLoad, summary.LoadedAt.Format(time.RFC3339))
	return summary, nil
}

// Run queries the session and records the outcome. The returned run id is 0 when history
// is disabled. A lookup miss is not an error here; it is reported through Result.
func (s *ProcessingService) Run(q Query) (Result, int, error) {
	res := s.session.Query(q)
	if s.db == nil {
		return res, 0, nil
	}

	run := internal.RunRecord{
		TraceID:        traceID(),
		LoadID:         s.loadID,
		Class:          q.Class,
		Size:           q.Size,
		Trim:           res.Trim,
		TrimRow:        res.TrimRow,
		ValveTorque:    res.Torques.Valve,
		ActuatorTorque: res.Torques.Actuator,
		Status:         "ok",
	}
	if !res.OK() {
		run.Status = "miss"
		run.Reason = res.Reason()
	}
	id, err := s.db.InsertRun(run, res.Rows, map[string]float64{"computeMs": float64(res.Elapsed.Microseconds()) / 1000})
	if err != nil {
		return res, 0, fmt.Errorf("record run: %w", err)
	}
	s.log.Debug("run recorded", "run_id", id, "trace_id", run.TraceID, "status", run.Status)
	return res, id, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
