package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeQdrant records requests and serves minimal Qdrant REST responses.
type fakeQdrant struct {
	collections []string
	created     []string
	upserts     []map[string]interface{}
	searches    int
}

func (f *fakeQdrant) handler() http.Handler {
	// Method/wildcard ServeMux patterns need Go 1.22+; dispatch manually
	// so the fake works on Go 1.21.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest, ok := strings.CutPrefix(r.URL.Path, "/collections")
		if !ok {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimPrefix(rest, "/")
		switch {
		case r.Method == http.MethodGet && rest == "":
			cols := make([]map[string]string, 0, len(f.collections))
			for _, c := range f.collections {
				cols = append(cols, map[string]string{"name": c})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"result": map[string]interface{}{"collections": cols},
			})
		case r.Method == http.MethodPut && name != "" && !strings.Contains(name, "/"):
			f.created = append(f.created, name)
			f.collections = append(f.collections, name)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": true})
		case r.Method == http.MethodPut && strings.HasSuffix(name, "/points"):
			if r.URL.Query().Get("wait") != "true" {
				http.Error(w, "expected wait=true", http.StatusBadRequest)
				return
			}
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			f.upserts = append(f.upserts, body)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": map[string]string{"status": "completed"}})
		case r.Method == http.MethodPost && strings.HasSuffix(name, "/points/search"):
			f.searches++
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"result": []map[string]interface{}{
					{"id": "11111111-2222-3333-4444-555555555555", "score": 0.91, "payload": map[string]string{"image_name": "cat.jpg"}},
					{"id": "66666666-7777-8888-9999-000000000000", "score": 0.40, "payload": map[string]string{"image_name": "dog.jpg"}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	})
}

func TestQdrantIndex_EnsureCollection_CreatesWhenAbsent(t *testing.T) {
	fake := &fakeQdrant{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	idx := NewQdrantIndex(srv.URL, "images")
	if err := idx.EnsureCollection(context.Background(), 512); err != nil {
		t.Fatal(err)
	}
	if len(fake.created) != 1 || fake.created[0] != "images" {
		t.Errorf("created: got %v", fake.created)
	}

	// Second call must be a no-op.
	if err := idx.EnsureCollection(context.Background(), 512); err != nil {
		t.Fatal(err)
	}
	if len(fake.created) != 1 {
		t.Errorf("create called again for existing collection: %v", fake.created)
	}
}

func TestQdrantIndex_EnsureCollection_ExistingSkipsCreate(t *testing.T) {
	fake := &fakeQdrant{collections: []string{"images"}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	idx := NewQdrantIndex(srv.URL, "images")
	if err := idx.EnsureCollection(context.Background(), 512); err != nil {
		t.Fatal(err)
	}
	if len(fake.created) != 0 {
		t.Errorf("unexpected create: %v", fake.created)
	}
}

func TestQdrantIndex_Upsert(t *testing.T) {
	fake := &fakeQdrant{collections: []string{"images"}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	idx := NewQdrantIndex(srv.URL, "images")
	point := Point{
		ID:      "11111111-2222-3333-4444-555555555555",
		Vector:  []float32{0.1, 0.2},
		Payload: map[string]string{"image_name": "cat.jpg"},
	}
	if err := idx.Upsert(context.Background(), point); err != nil {
		t.Fatal(err)
	}
	if len(fake.upserts) != 1 {
		t.Fatalf("upserts: got %d", len(fake.upserts))
	}
	points, ok := fake.upserts[0]["points"].([]interface{})
	if !ok || len(points) != 1 {
		t.Fatalf("points body: %v", fake.upserts[0])
	}
	p := points[0].(map[string]interface{})
	if p["id"] != point.ID {
		t.Errorf("id: got %v", p["id"])
	}
	payload := p["payload"].(map[string]interface{})
	if payload["image_name"] != "cat.jpg" {
		t.Errorf("payload: got %v", payload)
	}
}

func TestQdrantIndex_Query(t *testing.T) {
	fake := &fakeQdrant{collections: []string{"images"}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	idx := NewQdrantIndex(srv.URL, "images")
	results, err := idx.Query(context.Background(), []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results: got %d, want 2", len(results))
	}
	if results[0].Payload["image_name"] != "cat.jpg" {
		t.Errorf("top payload: got %v", results[0].Payload)
	}
	if results[0].Score != 0.91 {
		t.Errorf("top score: got %f", results[0].Score)
	}
}

func TestQdrantIndex_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	idx := NewQdrantIndex(srv.URL, "images")
	if err := idx.EnsureCollection(context.Background(), 512); err == nil {
		t.Error("expected error for 500 on list")
	}
	if err := idx.Upsert(context.Background(), Point{ID: "x"}); err == nil {
		t.Error("expected error for 500 on upsert")
	}
	if _, err := idx.Query(context.Background(), []float32{1}, 1); err == nil {
		t.Error("expected error for 500 on search")
	}
}
