// Package search orchestrates text-to-image similarity search.
package search

import (
	"context"
	"fmt"

	"github.com/hyperjump/gazou/internal/embedding"
	"github.com/hyperjump/gazou/internal/models"
	"github.com/hyperjump/gazou/internal/token"
	"github.com/hyperjump/gazou/internal/vector"
)

// Service runs a search: embed the query text, find the nearest points, and
// mint a token binding the top match so later feedback can be verified.
type Service struct {
	embedder embedding.Embedder
	index    vector.Index
	codec    token.Codec
	topK     int
}

// NewService creates a search service. topK bounds how many matches a
// response carries.
func NewService(embedder embedding.Embedder, index vector.Index, codec token.Codec, topK int) *Service {
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		embedder: embedder,
		index:    index,
		codec:    codec,
		topK:     topK,
	}
}

// Search returns ranked matches for the query text. Zero matches is a valid
// empty response with no token, not an error. The token binds the query text,
// the top match's image name and score, and the model name.
func (s *Service) Search(ctx context.Context, text string) (*models.SearchResponse, error) {
	queryVec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Query(ctx, queryVec, s.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(results) == 0 {
		return &models.SearchResponse{Matches: []models.SearchMatch{}}, nil
	}

	matches := make([]models.SearchMatch, 0, len(results))
	for _, r := range results {
		name := r.Payload["image_name"]
		if name == "" {
			// A point without provenance cannot be rated; skip it.
			continue
		}
		matches = append(matches, models.SearchMatch{ImageName: name, Score: r.Score})
	}
	if len(matches) == 0 {
		return &models.SearchResponse{Matches: []models.SearchMatch{}}, nil
	}

	tok, err := s.codec.Encode(token.ResultClaim{
		Text:      text,
		ImageName: matches[0].ImageName,
		Model:     s.embedder.ModelName(),
		Score:     matches[0].Score,
	})
	if err != nil {
		return nil, fmt.Errorf("mint result token: %w", err)
	}

	return &models.SearchResponse{Matches: matches, Token: tok}, nil
}
