// Package storage defines the persistence interface for feedback records.
package storage

import (
	"context"

	"github.com/hyperjump/gazou/internal/models"
)

// FeedbackStore defines feedback persistence operations.
type FeedbackStore interface {
	// CreateFeedback inserts a record and returns its new ID.
	CreateFeedback(ctx context.Context, fb *models.Feedback) (int64, error)
	GetFeedback(ctx context.Context, id int64) (*models.Feedback, error)
	ListFeedback(ctx context.Context, offset, limit int) ([]*models.Feedback, error)
	// DeleteFeedback soft-deletes a record; it stays in the table with
	// deleted_at set and disappears from reads.
	DeleteFeedback(ctx context.Context, id int64) error
	CountFeedback(ctx context.Context) (int64, error)

	Close() error
}
