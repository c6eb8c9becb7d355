package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/hyperjump/gazou/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests. It returns a fixed-dimension
// unit vector derived from the input hash so that the same input always gets the
// same embedding.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 512
	}
	return &MockEmbedder{dimensions: dimensions}
}

// EmbedText returns a deterministic embedding based on the text hash.
func (e *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.fromSeed([]byte(text)), nil
}

// EmbedImage returns a deterministic embedding based on the byte hash.
func (e *MockEmbedder) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	return e.fromSeed(data), nil
}

func (e *MockEmbedder) fromSeed(seed []byte) []float32 {
	h := fnv.New32a()
	_, _ = h.Write(seed)
	n := h.Sum32()
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(n)*float64(i+1))*0.1 + 0.01)
	}
	utils.NormalizeL2(emb)
	return emb
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName identifies the mock model in claims and payloads.
func (e *MockEmbedder) ModelName() string {
	return "mock"
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
