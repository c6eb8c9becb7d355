package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory brute-force cosine index. Suitable for tests and
// local development without a running vector index service.
type MemoryIndex struct {
	dimensions int
	points     map[string]Point
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		points:     make(map[string]Point),
	}, nil
}

// EnsureCollection validates the dimensionality; the map itself needs no setup.
func (m *MemoryIndex) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions != m.dimensions {
		return fmt.Errorf("dimension mismatch: got %d, expected %d", dimensions, m.dimensions)
	}
	return nil
}

// Upsert inserts or overwrites the point by ID.
func (m *MemoryIndex) Upsert(ctx context.Context, point Point) error {
	if len(point.Vector) != m.dimensions {
		return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(point.Vector), m.dimensions)
	}
	vec := make([]float32, m.dimensions)
	copy(vec, point.Vector)
	payload := make(map[string]string, len(point.Payload))
	for k, v := range point.Payload {
		payload[k] = v
	}
	m.mu.Lock()
	m.points[point.ID] = Point{ID: point.ID, Vector: vec, Payload: payload}
	m.mu.Unlock()
	return nil
}

// Query returns the top-limit points by inner product (cosine similarity for
// normalized vectors), best first.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, limit int) ([]QueryResult, error) {
	if len(vector) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vector), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || len(m.points) == 0 {
		return nil, nil
	}
	results := make([]QueryResult, 0, len(m.points))
	for _, p := range m.points {
		var dot float64
		for i := 0; i < m.dimensions; i++ {
			dot += float64(vector[i] * p.Vector[i])
		}
		results = append(results, QueryResult{ID: p.ID, Score: dot, Payload: p.Payload})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Size returns the number of points in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
