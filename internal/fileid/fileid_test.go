package fileid

import (
	"testing"

	"github.com/google/uuid"
)

func TestPointID_Stable(t *testing.T) {
	a := PointID("cat.jpg")
	b := PointID("cat.jpg")
	if a != b {
		t.Errorf("same name produced different IDs: %s vs %s", a, b)
	}
}

func TestPointID_DistinctNames(t *testing.T) {
	if PointID("cat.jpg") == PointID("dog.jpg") {
		t.Error("different names produced the same ID")
	}
}

func TestPointID_IgnoresDirectory(t *testing.T) {
	if PointID("/images/cat.jpg") != PointID("cat.jpg") {
		t.Error("directory prefix changed the ID")
	}
}

func TestPointID_IsUUID(t *testing.T) {
	if _, err := uuid.Parse(PointID("cat.jpg")); err != nil {
		t.Errorf("not a valid UUID: %v", err)
	}
}
