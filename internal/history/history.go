// Package history appends completed check results to a local SQLite
// database. It is write-only observability: nothing stored here ever feeds
// back into a check, and a failed write never changes plugin output.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/probekit/check-vcenter/internal/plugin"
)

const schema = `
CREATE TABLE IF NOT EXISTS check_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	checked_at TEXT NOT NULL DEFAULT (datetime('now')),
	mode TEXT NOT NULL,
	status TEXT NOT NULL,
	summary TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
)`

// Store wraps a SQLite database holding check history.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the history database at the given path.
// Creates the parent directory if needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode and a busy timeout keep concurrent plugin invocations from
	// tripping over each other.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single connection for writes
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() {
	s.db.Close()
}

// Append records one completed check.
func (s *Store) Append(ctx context.Context, mode string, res *plugin.Result, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO check_results (mode, status, summary, duration_ms) VALUES (?, ?, ?, ?)`,
		mode, res.Status.String(), res.Summary, duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert check result: %w", err)
	}
	return nil
}
