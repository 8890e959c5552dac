package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if necessary) the usage database.
// Use ":memory:" for an in-memory database, or a file path for persistent
// storage; parent directories are created for file paths.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	// Column layout is compatible with databases written by the original
	// tracker; session_id is additive with a safe default.
	schema := `
	CREATE TABLE IF NOT EXISTS app_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		app_name TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		session_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_app_usage_start_time ON app_usage(start_time);
	CREATE INDEX IF NOT EXISTS idx_app_usage_app_name ON app_usage(app_name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Older databases predate the session_id column.
	var hasSession bool
	rows, err := s.db.Query(`PRAGMA table_info(app_usage)`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == "session_id" {
			hasSession = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if !hasSession {
		if _, err := s.db.Exec(`ALTER TABLE app_usage ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}
	return nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

// rangeClause builds the optional start_time window predicate.
func rangeClause(rng *Range, args []any) (string, []any) {
	if rng == nil {
		return "", args
	}
	return " AND start_time >= ? AND start_time < ?", append(args, millis(rng.Start), millis(rng.End))
}

// Insert adds one closed usage interval.
func (s *SQLiteStore) Insert(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO app_usage (app_name, start_time, end_time, duration, session_id) VALUES (?, ?, ?, ?, ?)",
		rec.App, millis(rec.Start), millis(rec.End), rec.Duration.Milliseconds(), rec.SessionID,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// TopApps returns per-app usage totals within the range, most used first.
func (s *SQLiteStore) TopApps(ctx context.Context, rng *Range) ([]AppTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause, args := rangeClause(rng, nil)
	rows, err := s.db.QueryContext(ctx,
		"SELECT app_name, SUM(duration) AS total_duration FROM app_usage WHERE 1=1"+clause+
			" GROUP BY app_name ORDER BY total_duration DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query app totals: %w", err)
	}
	defer rows.Close()

	var totals []AppTotal
	for rows.Next() {
		var app string
		var ms int64
		if err := rows.Scan(&app, &ms); err != nil {
			return nil, fmt.Errorf("scan app total: %w", err)
		}
		totals = append(totals, AppTotal{App: app, Total: time.Duration(ms) * time.Millisecond})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return totals, nil
}

// TotalForApp returns the summed usage of a single application within the range.
func (s *SQLiteStore) TotalForApp(ctx context.Context, app string, rng *Range) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause, args := rangeClause(rng, []any{app})
	var ms int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration), 0) FROM app_usage WHERE app_name = ?"+clause,
		args...,
	).Scan(&ms)
	if err != nil {
		return 0, fmt.Errorf("query app usage: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Total returns the summed usage across all applications within the range.
func (s *SQLiteStore) Total(ctx context.Context, rng *Range) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause, args := rangeClause(rng, nil)
	var ms int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration), 0) FROM app_usage WHERE 1=1"+clause,
		args...,
	).Scan(&ms)
	if err != nil {
		return 0, fmt.Errorf("query total usage: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Records returns raw usage records within the range, oldest first.
func (s *SQLiteStore) Records(ctx context.Context, rng *Range) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause, args := rangeClause(rng, nil)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, app_name, start_time, end_time, duration, session_id FROM app_usage WHERE 1=1"+clause+
			" ORDER BY start_time, id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var startMS, endMS, durMS int64
		if err := rows.Scan(&rec.ID, &rec.App, &startMS, &endMS, &durMS, &rec.SessionID); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Start = time.UnixMilli(startMS)
		rec.End = time.UnixMilli(endMS)
		rec.Duration = time.Duration(durMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Prune deletes records that started before the cutoff and returns the count.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM app_usage WHERE start_time < ?", millis(before))
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
