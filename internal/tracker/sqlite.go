package tracker

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteTracker is a durable committed set. It survives restarts, so a process
// does not re-embed images that were committed by an earlier run, and multiple
// workers pointed at the same database do not duplicate work.
type SQLiteTracker struct {
	db *sql.DB
}

// NewSQLiteTracker opens or creates the tracker database at dbPath.
// Parent directories are created if they do not exist.
func NewSQLiteTracker(dbPath string) (*SQLiteTracker, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create tracker directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracker database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS processed_images (
		id TEXT PRIMARY KEY,
		committed_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize tracker schema: %w", err)
	}
	return &SQLiteTracker{db: db}, nil
}

// IsCommitted reports whether id has been marked committed. A query error is
// treated as not committed; the worst case is a redundant idempotent upsert.
func (t *SQLiteTracker) IsCommitted(id string) bool {
	var one int
	err := t.db.QueryRow(`SELECT 1 FROM processed_images WHERE id = ?`, id).Scan(&one)
	return err == nil
}

// MarkCommitted records id as committed. Marking an already-committed id is a no-op.
func (t *SQLiteTracker) MarkCommitted(id string) error {
	_, err := t.db.Exec(
		`INSERT OR IGNORE INTO processed_images (id, committed_at) VALUES (?, ?)`,
		id, time.Now(),
	)
	return err
}

// Close closes the tracker database.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
