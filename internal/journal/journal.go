package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Journal is the durable event log. Uses SQLite with WAL mode so
// readers (replay, inspection) do not block the single writer.
type Journal struct {
	db *sql.DB
}

// Run describes one journaled production run.
type Run struct {
	Token     string
	StartedAt time.Time
	Events    int
}

// Entry is one journaled event within a run.
type Entry struct {
	RunToken string
	Seq      int64
	Name     string
	Args     string // canonical JSON
}

// Open creates or opens the journal database at the given path.
// Pragmas and schema are applied automatically; calling Open on an
// existing journal is safe.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY errors under concurrent appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// BeginRun registers a new run under the given token. Idempotent:
// re-registering an existing token is a no-op.
func (j *Journal) BeginRun(ctx context.Context, token string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (token, started_at)
		VALUES (?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Append records one event at the given clock position. Duplicate
// (run, seq) pairs are silently ignored so retried appends stay
// idempotent.
//
// The run referenced by entry.RunToken must exist.
func (j *Journal) Append(ctx context.Context, entry Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (run_token, seq, name, args)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`, entry.RunToken, entry.Seq, entry.Name, entry.Args)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListRuns returns all journaled runs in token order, which for UUIDv7
// tokens is creation order.
func (j *Journal) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.token, r.started_at, COUNT(e.seq)
		FROM runs r
		LEFT JOIN events e ON e.run_token = r.token
		GROUP BY r.token
		ORDER BY r.token
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(&run.Token, &startedAt, &run.Events); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns a run's events ordered by clock position.
func (j *Journal) ReadRun(ctx context.Context, token string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_token, seq, name, args
		FROM events
		WHERE run_token = ?
		ORDER BY seq
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.RunToken, &entry.Seq, &entry.Name, &entry.Args); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	return entries, nil
}
