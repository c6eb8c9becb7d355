package tracker

import (
	"path/filepath"
	"testing"
)

func TestMemoryTracker(t *testing.T) {
	tr := NewMemoryTracker()
	defer tr.Close()

	if tr.IsCommitted("cat.jpg") {
		t.Error("fresh tracker reported committed")
	}
	if err := tr.MarkCommitted("cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if !tr.IsCommitted("cat.jpg") {
		t.Error("marked id not reported committed")
	}
	if tr.IsCommitted("dog.jpg") {
		t.Error("unmarked id reported committed")
	}
}

func TestMemoryTracker_MarkTwice(t *testing.T) {
	tr := NewMemoryTracker()
	defer tr.Close()
	if err := tr.MarkCommitted("cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := tr.MarkCommitted("cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if !tr.IsCommitted("cat.jpg") {
		t.Error("id lost after double mark")
	}
}

func TestSQLiteTracker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	tr, err := NewSQLiteTracker(path)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if tr.IsCommitted("cat.jpg") {
		t.Error("fresh tracker reported committed")
	}
	if err := tr.MarkCommitted("cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := tr.MarkCommitted("cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if !tr.IsCommitted("cat.jpg") {
		t.Error("marked id not reported committed")
	}
}

func TestSQLiteTracker_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	tr, err := NewSQLiteTracker(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.MarkCommitted("cat.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteTracker(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if !reopened.IsCommitted("cat.jpg") {
		t.Error("commitment lost across reopen")
	}
}
