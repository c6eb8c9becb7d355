// Package vector provides clients for the external vector index service.
package vector

import "context"

// Index defines the vector index operations the ingestion loop and search
// service need: idempotent collection setup, durable upsert by point ID, and
// nearest-neighbor query with payload retrieval.
type Index interface {
	// EnsureCollection creates the target collection with the given
	// dimensionality and a cosine metric if it does not already exist.
	// Safe to call repeatedly across restarts.
	EnsureCollection(ctx context.Context, dimensions int) error

	// Upsert inserts or overwrites the point by ID, waiting for durability.
	Upsert(ctx context.Context, point Point) error

	// Query returns up to limit nearest points to the vector, best first,
	// with payloads attached.
	Query(ctx context.Context, vector []float32, limit int) ([]QueryResult, error)

	Close() error
}

// Point is a vector index entry. ID to vector is a function: re-upserting the
// same ID overwrites, never duplicates.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]string
}

// QueryResult is a single nearest-neighbor hit.
type QueryResult struct {
	ID      string
	Score   float64
	Payload map[string]string
}
