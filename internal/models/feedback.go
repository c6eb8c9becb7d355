// Package models defines core data structures for search results and feedback.
package models

import "time"

// Feedback is a user rating for a specific search result, persisted after the
// result-binding token has been verified.
type Feedback struct {
	ID        int64      `json:"id" db:"id"`
	Text      string     `json:"text" db:"text"`
	ImageName string     `json:"image_name" db:"image_name"`
	Model     string     `json:"model" db:"model"`
	Rating    int        `json:"user_feedback" db:"user_feedback"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
