// Package tracker records which images have been committed to the vector index.
package tracker

import "sync"

// Tracker answers "has this image been committed?" for the ingestion loop.
// There is no removal: commitment is permanent for a tracker's lifetime.
// Implementations must be safe for concurrent use.
type Tracker interface {
	IsCommitted(id string) bool
	MarkCommitted(id string) error
	Close() error
}

// MemoryTracker is a process-lifetime committed set. A restart loses it, which
// is safe because index upserts are idempotent; the cost is re-embedding every
// file once per restart. Use SQLiteTracker to avoid that.
type MemoryTracker struct {
	mu        sync.RWMutex
	committed map[string]struct{}
}

// NewMemoryTracker returns an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{committed: make(map[string]struct{})}
}

// IsCommitted reports whether id has been marked committed.
func (t *MemoryTracker) IsCommitted(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.committed[id]
	return ok
}

// MarkCommitted records id as committed.
func (t *MemoryTracker) MarkCommitted(id string) error {
	t.mu.Lock()
	t.committed[id] = struct{}{}
	t.mu.Unlock()
	return nil
}

// Close is a no-op for MemoryTracker.
func (t *MemoryTracker) Close() error {
	return nil
}
