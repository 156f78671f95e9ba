package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockForecaster/internal/logger"
	"StockForecaster/internal/model"
)

const defaultRecentLimit = 50

// SQLiteRecorder persists prediction runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, l *logger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: l}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	l.Info("sqlite recorder opened", logger.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prediction_runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			algorithm   TEXT NOT NULL,
			parameters  TEXT,
			points      INTEGER,
			error       TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON prediction_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON prediction_runs(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *model.PredictionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	params, err := json.Marshal(run.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	ts := run.CreatedAt
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	_, err = r.db.Exec(`INSERT INTO prediction_runs
		(id, timestamp, symbol, algorithm, parameters, points, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.ID, ts, run.Symbol, run.Algorithm, string(params),
		run.Points, run.Error, run.DurationMs,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]model.PredictionRun, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := r.db.Query(`SELECT id, timestamp, symbol, algorithm, parameters, points, error, duration_ms
		FROM prediction_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.PredictionRun
	for rows.Next() {
		var (
			run    model.PredictionRun
			params sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Symbol, &run.Algorithm,
			&params, &run.Points, &errMsg, &run.DurationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if params.Valid && params.String != "" && params.String != "null" {
			if err := json.Unmarshal([]byte(params.String), &run.Parameters); err != nil {
				r.log.Warn("decode run parameters", logger.String("id", run.ID), logger.Error(err))
			}
		}
		run.Error = errMsg.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
