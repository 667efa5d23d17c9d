package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory ledger.
const MemoryPath = ":memory:"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// Open creates or opens the ledger database at dbPath. Use MemoryPath for an
// in-memory database.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, ledgerErr("could not create ledger directory", dbPath, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ledgerErr("could not open ledger database", dbPath, err)
	}
	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, ledgerErr("failed to initialize ledger schema", dbPath, err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		version TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		outcome TEXT
	);
	CREATE TABLE IF NOT EXISTS stage_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		stage TEXT NOT NULL,
		kind TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		result TEXT,
		duration_ms INTEGER,
		row_count INTEGER,
		column_count INTEGER,
		message TEXT,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_stage_events_run ON stage_events(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginRun inserts a new run row.
func (s *SQLiteStore) BeginRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, command, version, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Command, run.Version, run.Started.UnixMilli(),
	)
	if err != nil {
		return ledgerErr("failed to insert run", s.path, err)
	}
	return nil
}

// RecordStage appends a stage event.
func (s *SQLiteStore) RecordStage(ctx context.Context, ev StageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON []byte
	if ev.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(ev.Metadata)
		if err != nil {
			return ledgerErr("failed to encode stage metadata", s.path, err)
		}
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_events (run_id, stage, kind, timestamp, result, duration_ms, row_count, column_count, message, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.Stage, string(ev.Kind), at.UnixMilli(), ev.Result, ev.Duration.Milliseconds(),
		ev.Rows, ev.Columns, ev.Message, metadataJSON,
	)
	if err != nil {
		return ledgerErr("failed to append stage event", s.path, err)
	}
	return nil
}

// FinishRun records the final outcome of a run.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID, outcome string, finished time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, outcome = ? WHERE run_id = ?",
		finished.UnixMilli(), outcome, runID,
	)
	if err != nil {
		return ledgerErr("failed to finish run", s.path, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledgerErr("unknown run "+runID, s.path, nil)
	}
	return nil
}

// Recent lists up to limit runs, newest first. A non-positive limit lists all.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, command, version, started_at, finished_at, outcome FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, ledgerErr("failed to query runs", s.path, err)
	}
	runs, err := scanRuns(rows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range runs {
		events, err := s.stages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = events
	}
	return runs, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var started int64
		var finished sql.NullInt64
		var outcome sql.NullString
		if err := rows.Scan(&r.ID, &r.Command, &r.Version, &started, &finished, &outcome); err != nil {
			return nil, ledgerErr("failed to scan run", "", err)
		}
		r.Started = time.UnixMilli(started)
		if finished.Valid {
			r.Finished = time.UnixMilli(finished.Int64)
		}
		r.Outcome = outcome.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgerErr("failed to iterate runs", "", err)
	}
	return runs, nil
}

func (s *SQLiteStore) stages(ctx context.Context, runID string) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, stage, kind, timestamp, result, duration_ms, row_count, column_count, message, metadata
		FROM stage_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, ledgerErr("failed to query stage events", s.path, err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var ev StageEvent
		var kind string
		var ts, durationMS int64
		var result, message sql.NullString
		var nrows, ncols sql.NullInt64
		var metadataJSON []byte
		if err := rows.Scan(&ev.RunID, &ev.Stage, &kind, &ts, &result, &durationMS, &nrows, &ncols, &message, &metadataJSON); err != nil {
			return nil, ledgerErr("failed to scan stage event", s.path, err)
		}
		ev.Kind = EventKind(kind)
		ev.At = time.UnixMilli(ts)
		ev.Result = result.String
		ev.Duration = time.Duration(durationMS) * time.Millisecond
		ev.Rows = int(nrows.Int64)
		ev.Columns = int(ncols.Int64)
		ev.Message = message.String
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &ev.Metadata); err != nil {
				return nil, ledgerErr("failed to decode stage metadata", s.path, err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, ledgerErr("failed to iterate stage events", s.path, err)
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
