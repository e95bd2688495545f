package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mastdash/internal"
	"mastdash/internal/util"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertLoad(internal.LoadRecord{
		MastSource:  "mast.csv",
		DashSource:  "dash.csv",
		MastHash:    "aa",
		DashHash:    "bb",
		MastRows:    40,
		DashRows:    12,
		TrimEntries: 6,
		ValveTorque: util.FloatPtr(500),
	})
	require.NoError(t, err)

	got, err := db.GetLoad(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mast.csv", got.MastSource)
	assert.Equal(t, 6, got.TrimEntries)
	require.NotNil(t, got.ValveTorque)
	assert.Equal(t, 500.0, *got.ValveTorque)
	assert.Nil(t, got.ActuatorTorque)

	missing, err := db.GetLoad(id + 100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRunsKeepRowsForReexport(t *testing.T) {
	db := openTestDB(t)

	loadID, err := db.InsertLoad(internal.LoadRecord{MastSource: "m", DashSource: "d", MastHash: "1", DashHash: "2"})
	require.NoError(t, err)

	rows := []internal.CapabilityRow{
		{Material: "Monel 400", BallToStem: util.FloatPtr(100), Sealing: util.FloatPtr(90), MinOfAll: util.FloatPtr(90)},
		{Material: "Alloy 20"},
	}
	okID, err := db.InsertRun(internal.RunRecord{
		TraceID: "t1", LoadID: &loadID, Class: 150, Size: 2, Trim: util.FloatPtr(12), TrimRow: 3, Status: "ok",
	}, rows, map[string]float64{"totalMs": 1})
	require.NoError(t, err)

	missID, err := db.InsertRun(internal.RunRecord{
		TraceID: "t2", Class: 600, Size: 9, TrimRow: -1, Status: "miss", Reason: "no trim mapping",
	}, nil, nil)
	require.NoError(t, err)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, missID, runs[0].ID)
	assert.Equal(t, okID, runs[1].ID)
	assert.Nil(t, runs[0].LoadID)
	assert.Equal(t, "no trim mapping", runs[0].Reason)
	assert.Equal(t, 0, runs[0].RowCount)

	run, err := db.MustRun(okID)
	require.NoError(t, err)
	require.NotNil(t, run.LoadID)
	assert.Equal(t, loadID, *run.LoadID)
	assert.Equal(t, 2, run.RowCount)
	require.NotNil(t, run.Trim)
	assert.Equal(t, 12.0, *run.Trim)

	stored, err := db.GetRunRows(okID)
	require.NoError(t, err)
	assert.Equal(t, rows, stored)

	_, err = db.MustRun(999)
	assert.ErrorContains(t, err, "run not found")
	_, err = db.GetRunRows(999)
	assert.Error(t, err)
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)

	v, err := db.GetMetadata("sheets.last_load")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.SetMetadata("sheets.last_load", "a"))
	require.NoError(t, db.SetMetadata("sheets.last_load", "b"))

	v, err = db.GetMetadata("sheets.last_load")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "b", *v)
}
