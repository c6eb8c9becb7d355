package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QdrantIndex talks to a Qdrant instance over its REST API.
type QdrantIndex struct {
	baseURL    string
	collection string
	client     *http.Client
}

// NewQdrantIndex creates a client for the Qdrant instance at baseURL, bound to
// the named collection.
func NewQdrantIndex(baseURL, collection string) *QdrantIndex {
	return &QdrantIndex{
		baseURL:    baseURL,
		collection: collection,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type collectionsResponse struct {
	Result struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	} `json:"result"`
}

// EnsureCollection lists existing collections and creates the target
// collection with the given dimensionality and cosine distance only if absent.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, dimensions int) error {
	body, err := q.do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	var list collectionsResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("parse collections response: %w", err)
	}
	for _, c := range list.Result.Collections {
		if c.Name == q.collection {
			return nil
		}
	}

	create := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	if _, err := q.do(ctx, http.MethodPut, "/collections/"+q.collection, create); err != nil {
		return fmt.Errorf("create collection %q: %w", q.collection, err)
	}
	return nil
}

// Upsert writes the point with wait=true so the call returns only after the
// write is durable.
func (q *QdrantIndex) Upsert(ctx context.Context, point Point) error {
	req := map[string]interface{}{
		"points": []map[string]interface{}{
			{
				"id":      point.ID,
				"vector":  point.Vector,
				"payload": point.Payload,
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points?wait=true", q.collection)
	if _, err := q.do(ctx, http.MethodPut, path, req); err != nil {
		return fmt.Errorf("upsert point %s: %w", point.ID, err)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      interface{}       `json:"id"`
		Score   float64           `json:"score"`
		Payload map[string]string `json:"payload"`
	} `json:"result"`
}

// Query runs a nearest-neighbor search with payload retrieval enabled.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, limit int) ([]QueryResult, error) {
	req := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	body, err := q.do(ctx, http.MethodPost, "/collections/"+q.collection+"/points/search", req)
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	results := make([]QueryResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, QueryResult{
			ID:      fmt.Sprintf("%v", r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return results, nil
}

func (q *QdrantIndex) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector index returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Close is a no-op for QdrantIndex.
func (q *QdrantIndex) Close() error {
	return nil
}
