// Package embedding provides clients for the external embedding model service.
package embedding

import "context"

// Embedder produces vector embeddings for text queries and image bytes.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedImage(ctx context.Context, data []byte) ([]float32, error)
	Dimensions() int
	ModelName() string
	Close() error
}
