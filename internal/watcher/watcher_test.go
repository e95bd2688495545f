package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastdash/internal/config"
	"mastdash/internal/pipeline"
	"mastdash/internal/sheets"
	"mastdash/internal/storage"
)

const mastCSV = `,Ball to Stem,Circular,Operator Side
Material,Monel 400,Monel 400,Monel 400
Trim 12,100,90,95
`

const dashCSV = `2150,12,Valve Torque,500
`

func setup(t *testing.T, class, size int, formats ...string) (*Service, *storage.DB, config.Config) {
	t.Helper()
	dir := t.TempDir()
	mast := filepath.Join(dir, "mast.csv")
	dash := filepath.Join(dir, "dash.csv")
	require.NoError(t, os.WriteFile(mast, []byte(mastCSV), 0o644))
	require.NoError(t, os.WriteFile(dash, []byte(dashCSV), 0o644))

	cfg := config.Config{
		MastURL:           mast,
		DashURL:           dash,
		OutputDir:         filepath.Join(dir, "out"),
		FetchTimeoutMs:    1000,
		FetchAttempts:     1,
		FetchRateLimitRPS: 100,
		VerifyPolicy:      "operator",
		FOSValveMin:       2,
		FOSActuatorMin:    1,
		WatchIntervalSec:  1,
		WatchClass:        class,
		WatchSize:         size,
		WatchFormats:      formats,
	}

	db, err := storage.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	proc, err := pipeline.NewProcessingService(db, cfg, sheets.NewLoader(cfg, nil), nil)
	require.NoError(t, err)

	svc := NewService(proc, cfg, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, db, cfg
}

func TestRunCycleWritesReports(t *testing.T) {
	svc, db, cfg := setup(t, 150, 2, "xlsx", "csv")

	res, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "watch", "MAST_Dashboard_20260102_030405.xlsx"), res.Files[0])
	for _, f := range res.Files {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}

	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, "ok", runs[0].Status)
}

func TestRunCycleReportsMiss(t *testing.T) {
	svc, db, _ := setup(t, 600, 2, "xlsx")

	res, err := svc.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trim mapping")
	assert.Empty(t, res.Files)

	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "miss", runs[0].Status)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, db, _ := setup(t, 150, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		runs, err := db.ListRuns(5)
		return err == nil && len(runs) >= 1
	}, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRunRequiresSelection(t *testing.T) {
	svc, _, _ := setup(t, 0, 0)
	assert.Error(t, svc.Run(context.Background()))
}
