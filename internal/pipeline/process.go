package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mastdash/internal"
	"mastdash/internal/logging"
)

// GridLoader fetches and parses one tabular source.
type GridLoader interface {
	LoadGrid(ctx context.Context, source string) (internal.SourceDocument, error)
}

// Query selects a configuration and optionally overrides the sheet torques.
type Query struct {
	Class          int      `json:"class"`
	Size           int      `json:"size"`
	ValveTorque    *float64 `json:"valveTorque,omitempty"`
	ActuatorTorque *float64 `json:"actuatorTorque,omitempty"`
}

// Result is the outcome of one query. A lookup miss leaves Rows empty and sets Err.
type Result struct {
	Query   Query                    `json:"query"`
	Trim    *float64                 `json:"trim,omitempty"`
	TrimRow int                      `json:"trimRow"`
	Blocks  []internal.Block         `json:"blocks,omitempty"`
	Torques Torques                  `json:"torques"`
	Rows    []internal.CapabilityRow `json:"rows"`
	Err     error                    `json:"-"`
	Elapsed time.Duration            `json:"-"`
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Reason is the failure message shown to the user, or "" on success.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Compute runs one query against already loaded data. It has no side effects.
func Compute(mast internal.Grid, trims internal.TrimMap, sheetTorques Torques, q Query, policy VerifyPolicy) Result {
	start := time.Now()
	res := Result{Query: q, TrimRow: -1, Rows: []internal.CapabilityRow{}}
	res.Torques = Torques{
		Valve:    firstPresent(q.ValveTorque, sheetTorques.Valve),
		Actuator: firstPresent(q.ActuatorTorque, sheetTorques.Actuator),
	}

	resolved, err := Resolve(mast, trims, q.Class, q.Size)
	if errors.Is(err, ErrBlocksNotFound) || errors.Is(err, ErrTrimRowNotFound) || err == nil {
		trim := resolved.Trim
		res.Trim = &trim
		res.Blocks = resolved.Blocks
		res.TrimRow = resolved.TrimRow
	}
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	res.Rows = ComputeRows(mast, resolved.TrimRow, resolved.Columns, res.Torques, policy)
	res.Elapsed = time.Since(start)
	return res
}

// LoadSummary describes what a successful load derived from both sources.
type LoadSummary struct {
	Mast        internal.SourceDocument `json:"-"`
	Dash        internal.SourceDocument `json:"-"`
	MastSource  string                  `json:"mastSource"`
	DashSource  string                  `json:"dashSource"`
	MastRows    int                     `json:"mastRows"`
	DashRows    int                     `json:"dashRows"`
	TrimEntries int                     `json:"trimEntries"`
	Classes     []int                   `json:"classes"`
	Sizes       []int                   `json:"sizes"`
	Torques     Torques                 `json:"torques"`
	LoadedAt    time.Time               `json:"loadedAt"`
}

type loadedState struct {
	mast    internal.Grid
	trims   internal.TrimMap
	torques Torques
	summary LoadSummary
}

// Session holds the currently loaded sheets and the rows of the last query. It is safe
// for concurrent use.
type Session struct {
	policy VerifyPolicy
	log    *slog.Logger

	mu       sync.RWMutex
	state    *loadedState
	lastRows []internal.CapabilityRow
}

func NewSession(policy VerifyPolicy, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{policy: policy, log: logger}
}

// Reload fetches both sources concurrently and swaps the session state only when both
// succeed. On failure the previous state is kept.
func (s *Session) Reload(ctx context.Context, loader GridLoader, mastSource, dashSource string) (LoadSummary, error) {
	var mast, dash internal.SourceDocument

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := loader.LoadGrid(gctx, mastSource)
		if err != nil {
			return &SourceLoadError{Name: "mast", Source: mastSource, Err: err}
		}
		mast = doc
		return nil
	})
	g.Go(func() error {
		doc, err := loader.LoadGrid(gctx, dashSource)
		if err != nil {
			return &SourceLoadError{Name: "dash", Source: dashSource, Err: err}
		}
		dash = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("sheet load failed", "err", err)
		return LoadSummary{}, err
	}

	return s.Use(mast, dash), nil
}

// Use installs already loaded documents and derives the trim map and sheet torques.
func (s *Session) Use(mast, dash internal.SourceDocument) LoadSummary {
	trims := BuildTrimMap(dash.Grid)
	torques := Torques{
		Valve:    ReadTorque(dash.Grid, LabelValveTorque),
		Actuator: ReadTorque(dash.Grid, LabelActuatorTorque),
	}
	summary := LoadSummary{
		Mast:        mast,
		Dash:        dash,
		MastSource:  mast.Source,
		DashSource:  dash.Source,
		MastRows:    len(mast.Grid),
		DashRows:    len(dash.Grid),
		TrimEntries: trims.Len(),
		Classes:     trims.Classes(),
		Sizes:       trims.Sizes(),
		Torques:     torques,
		LoadedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.state = &loadedState{mast: mast.Grid, trims: trims, torques: torques, summary: summary}
	s.mu.Unlock()

	s.log.Info("sheets loaded",
		"mast_rows", summary.MastRows,
		"dash_rows", summary.DashRows,
		"trim_entries", summary.TrimEntries,
	)
	return summary
}

// Query computes the capability matrix for q and makes it the session's last result.
func (s *Session) Query(q Query) Result {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	if state == nil {
		return Result{Query: q, TrimRow: -1, Rows: []internal.CapabilityRow{}, Err: ErrNotLoaded}
	}

	res := Compute(state.mast, state.trims, state.torques, q, s.policy)

	s.mu.Lock()
	s.lastRows = res.Rows
	s.mu.Unlock()

	if res.Err != nil {
		s.log.Warn("query miss", "class", q.Class, "size", q.Size, "reason", res.Reason())
	} else {
		s.log.Debug("query ok", "class", q.Class, "size", q.Size, "trim", *res.Trim, "rows", len(res.Rows))
	}
	return res
}

func (s *Session) LastRows() []internal.CapabilityRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]internal.CapabilityRow, len(s.lastRows))
	copy(out, s.lastRows)
	return out
}

// Summary reports the current load; ok is false before the first successful load.
func (s *Session) Summary() (LoadSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return LoadSummary{}, false
	}
	return s.state.summary, true
}

func (s *Session) TrimMap() internal.TrimMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return internal.TrimMap{}
	}
	return s.state.trims
}

func firstPresent(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
