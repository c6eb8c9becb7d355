// Package storage provides SQLite implementation of the FeedbackStore interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/gazou/internal/models"
)

// SQLiteStore implements FeedbackStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		image_name TEXT NOT NULL,
		model TEXT NOT NULL,
		user_feedback INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_feedback_image_name ON feedback(image_name);
	CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateFeedback inserts a feedback record and returns its new ID.
func (s *SQLiteStore) CreateFeedback(ctx context.Context, fb *models.Feedback) (int64, error) {
	now := time.Now()
	fb.CreatedAt = now
	fb.UpdatedAt = now

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (text, image_name, model, user_feedback, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fb.Text, fb.ImageName, fb.Model, fb.Rating, fb.CreatedAt, fb.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	fb.ID = id
	return id, nil
}

// GetFeedback returns a feedback record by ID. Soft-deleted records are not returned.
func (s *SQLiteStore) GetFeedback(ctx context.Context, id int64) (*models.Feedback, error) {
	var fb models.Feedback
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, image_name, model, user_feedback, created_at, updated_at
		 FROM feedback WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&fb.ID, &fb.Text, &fb.ImageName, &fb.Model, &fb.Rating, &fb.CreatedAt, &fb.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feedback not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// ListFeedback returns non-deleted feedback records with offset and limit, newest first.
func (s *SQLiteStore) ListFeedback(ctx context.Context, offset, limit int) ([]*models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, image_name, model, user_feedback, created_at, updated_at
		 FROM feedback WHERE deleted_at IS NULL
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.Text, &fb.ImageName, &fb.Model, &fb.Rating, &fb.CreatedAt, &fb.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &fb)
	}
	return records, rows.Err()
}

// DeleteFeedback soft-deletes a record by setting deleted_at.
func (s *SQLiteStore) DeleteFeedback(ctx context.Context, id int64) error {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`UPDATE feedback SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("feedback not found: %d", id)
	}
	return nil
}

// CountFeedback returns the number of non-deleted feedback records.
func (s *SQLiteStore) CountFeedback(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback WHERE deleted_at IS NULL`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
