package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/gazou/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fb := &models.Feedback{
		Text:      "a red car",
		ImageName: "car.jpg",
		Model:     "clip-vit-b-32",
		Rating:    5,
	}
	id, err := store.CreateFeedback(ctx, fb)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	got, err := store.GetFeedback(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "a red car" || got.ImageName != "car.jpg" || got.Model != "clip-vit-b-32" || got.Rating != 5 {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetFeedback_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetFeedback(context.Background(), 999); err == nil {
		t.Error("expected error for missing record")
	}
}

func TestListFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.CreateFeedback(ctx, &models.Feedback{
			Text: "q", ImageName: "i.jpg", Model: "m", Rating: i,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	records, err := store.ListFeedback(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("records: got %d, want 3", len(records))
	}
}

func TestDeleteFeedback_SoftDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateFeedback(ctx, &models.Feedback{Text: "q", ImageName: "i.jpg", Model: "m", Rating: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteFeedback(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetFeedback(ctx, id); err == nil {
		t.Error("soft-deleted record still readable")
	}
	count, err := store.CountFeedback(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("count: got %d, want 0", count)
	}
	// Double delete reports not found.
	if err := store.DeleteFeedback(ctx, id); err == nil {
		t.Error("expected error deleting already-deleted record")
	}
}

func TestCountFeedback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	count, err := store.CountFeedback(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("empty count: got %d", count)
	}
	_, _ = store.CreateFeedback(ctx, &models.Feedback{Text: "q", ImageName: "i.jpg", Model: "m", Rating: 4})
	count, _ = store.CountFeedback(ctx)
	if count != 1 {
		t.Errorf("count: got %d, want 1", count)
	}
}
