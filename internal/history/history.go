// Package history persists validation run results in a local SQLite
// database so students can see their progress over time.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/buildcamp/sandboxcheck/internal/gate"
)

// Run is one recorded validation run.
type Run struct {
	ID          int64         `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Root        string        `json:"root"`
	Passed      int           `json:"passed"`
	Total       int           `json:"total"`
	Duration    time.Duration `json:"duration"`
	FailedGates []string      `json:"failed_gates,omitempty"`
}

// AllPassed reports whether the run cleared every gate.
func (r Run) AllPassed() bool {
	return r.Passed == r.Total
}

// Store persists runs in SQLite. A single writer connection keeps lock
// contention out of the picture.
type Store struct {
	db      *sql.DB
	maxRuns int
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	ts           TEXT    NOT NULL,
	root         TEXT    NOT NULL,
	passed       INTEGER NOT NULL,
	total        INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	failed_gates TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts DESC);
`

// New opens (or creates) the run history database at path. An empty
// path opens an in-memory database for testing.
func New(path string, maxRuns int) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL mode must be set via PRAGMA for modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	if maxRuns <= 0 {
		maxRuns = 100
	}

	return &Store{db: db, maxRuns: maxRuns}, nil
}

// Record appends the report as a new run and prunes old entries beyond
// the configured retention limit.
func (s *Store) Record(ctx context.Context, report *gate.Report) error {
	var failed []string
	for _, g := range report.FailedGates() {
		failed = append(failed, g.Name)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (ts, root, passed, total, duration_ms, failed_gates)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.Timestamp.UTC().Format(time.RFC3339Nano),
		report.Root,
		report.Tally.Passed,
		report.Tally.Total,
		report.Duration.Milliseconds(),
		strings.Join(failed, ","),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return s.prune(ctx)
}

// List returns the most recent runs, newest first. A limit of zero or
// less returns everything retained.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, ts, root, passed, total, duration_ms, failed_gates
	          FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			ts         string
			durationMS int64
			failed     string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Root, &r.Passed, &r.Total, &durationMS, &failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if failed != "" {
			r.FailedGates = strings.Split(failed, ",")
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Latest returns the most recent run, or nil if none recorded.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// Count returns the number of retained runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// prune deletes the oldest runs beyond the retention limit.
func (s *Store) prune(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN
		 (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		s.maxRuns,
	)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
