package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClipEmbedder calls the external CLIP model service over HTTP. Text and image
// inputs share the /encode endpoint; exactly one of the request fields is set.
type ClipEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
	cache      *Cache
}

type encodeRequest struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
	Model string `json:"model,omitempty"`
}

type encodeResponse struct {
	Vector []float32 `json:"vector"`
	Model  string    `json:"model"`
}

// NewClipEmbedder creates a client for the model service at baseURL. The
// configured dimensions must match the service's output; a mismatch is
// reported as an error on the first call. cacheSize > 0 enables an LRU cache
// for text embeddings (repeated queries skip the network round trip).
func NewClipEmbedder(baseURL, model string, dimensions, cacheSize int) *ClipEmbedder {
	e := &ClipEmbedder{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	if cacheSize > 0 {
		e.cache = NewCache(cacheSize)
	}
	return e
}

// EmbedText returns the embedding for a free-text query.
func (e *ClipEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if vec, ok := e.cache.Get(text); ok {
			return vec, nil
		}
	}
	vec, err := e.encode(ctx, encodeRequest{Text: text, Model: e.model})
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(text, vec)
	}
	return vec, nil
}

// EmbedImage returns the embedding for raw image bytes. The payload is
// base64-encoded for transport.
func (e *ClipEmbedder) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	return e.encode(ctx, encodeRequest{Image: encoded, Model: e.model})
}

func (e *ClipEmbedder) encode(ctx context.Context, reqBody encodeRequest) ([]float32, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encode", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(body))
	}

	var encResp encodeResponse
	if err := json.Unmarshal(body, &encResp); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if len(encResp.Vector) != e.dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(encResp.Vector), e.dimensions)
	}
	return encResp.Vector, nil
}

// Dimensions returns the configured embedding dimension.
func (e *ClipEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the model identifier sent with each request and bound into
// result tokens.
func (e *ClipEmbedder) ModelName() string {
	return e.model
}

// Close is a no-op for ClipEmbedder.
func (e *ClipEmbedder) Close() error {
	return nil
}
