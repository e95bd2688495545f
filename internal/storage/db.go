package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mastdash/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS loads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  mastSource TEXT NOT NULL,
  dashSource TEXT NOT NULL,
  mastHash TEXT NOT NULL,
  dashHash TEXT NOT NULL,
  mastRows INTEGER NOT NULL,
  dashRows INTEGER NOT NULL,
  trimEntries INTEGER NOT NULL,
  valveTorque REAL,
  actuatorTorque REAL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  loadId INTEGER,
  class INTEGER NOT NULL,
  size INTEGER NOT NULL,
  trim REAL,
  trimRow INTEGER NOT NULL,
  valveTorque REAL,
  actuatorTorque REAL,
  status TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  rowCount INTEGER NOT NULL DEFAULT 0,
  rowsJson TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(loadId) REFERENCES loads(id)
);
CREATE INDEX IF NOT EXISTS idx_runs_config ON runs(class, size);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertLoad(load internal.LoadRecord) (int, error) {
	res, err := d.conn.Exec(`
INSERT INTO loads (mastSource, dashSource, mastHash, dashHash, mastRows, dashRows, trimEntries, valveTorque, actuatorTorque)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, load.MastSource, load.DashSource, load.MastHash, load.DashHash, load.MastRows, load.DashRows, load.TrimEntries, load.ValveTorque, load.ActuatorTorque)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func (d *DB) GetLoad(id int) (*internal.LoadRecord, error) {
	var row internal.LoadRecord
	err := d.conn.QueryRow(`
SELECT id, mastSource, dashSource, mastHash, dashHash, mastRows, dashRows, trimEntries, valveTorque, actuatorTorque, createdAt
FROM loads WHERE id = ?
`, id).Scan(
		&row.ID, &row.MastSource, &row.DashSource, &row.MastHash, &row.DashHash,
		&row.MastRows, &row.DashRows, &row.TrimEntries, &row.ValveTorque, &row.ActuatorTorque, &row.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// InsertRun stores one query outcome together with its rows so it can be re-exported later.
func (d *DB) InsertRun(run internal.RunRecord, rows []internal.CapabilityRow, timings map[string]float64) (int, error) {
	if rows == nil {
		rows = []internal.CapabilityRow{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return 0, err
	}
	timingsJSON, _ := json.Marshal(timings)

	res, err := d.conn.Exec(`
INSERT INTO runs (traceId, loadId, class, size, trim, trimRow, valveTorque, actuatorTorque, status, reason, rowCount, rowsJson, timingsJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, run.TraceID, run.LoadID, run.Class, run.Size, run.Trim, run.TrimRow, run.ValveTorque, run.ActuatorTorque,
		run.Status, run.Reason, len(rows), string(rowsJSON), string(timingsJSON))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

const runColumns = `id, traceId, loadId, class, size, trim, trimRow, valveTorque, actuatorTorque, status, reason, rowCount, createdAt`

func scanRun(scan func(dest ...any) error) (internal.RunRecord, error) {
	var row internal.RunRecord
	err := scan(
		&row.ID, &row.TraceID, &row.LoadID, &row.Class, &row.Size, &row.Trim, &row.TrimRow,
		&row.ValveTorque, &row.ActuatorTorque, &row.Status, &row.Reason, &row.RowCount, &row.CreatedAt,
	)
	return row, err
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		row, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetRun(id int) (*internal.RunRecord, error) {
	row, err := scanRun(d.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustRun(id int) (internal.RunRecord, error) {
	row, err := d.GetRun(id)
	if err != nil {
		return internal.RunRecord{}, err
	}
	if row == nil {
		return internal.RunRecord{}, fmt.Errorf("run not found: id=%d", id)
	}
	return *row, nil
}

func (d *DB) GetRunRows(id int) ([]internal.CapabilityRow, error) {
	var rowsJSON string
	err := d.conn.QueryRow(`SELECT rowsJson FROM runs WHERE id = ?`, id).Scan(&rowsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: id=%d", id)
	}
	if err != nil {
		return nil, err
	}
	var out []internal.CapabilityRow
	if err := json.Unmarshal([]byte(rowsJSON), &out); err != nil {
		return nil, fmt.Errorf("decode rows of run %d: %w", id, err)
	}
	return out, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
