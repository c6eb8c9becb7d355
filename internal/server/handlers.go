package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/gazou/internal/models"
)

func (s *Server) handleSearchImage(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	s.logger.Debug("search request", zap.String("text", req.Text))
	response, err := s.search.Search(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	claim, err := s.codec.Decode(req.Token)
	if err != nil {
		// Deliberately uniform: the response never reveals whether the token
		// was malformed, tampered with, or expired.
		s.logger.Debug("feedback token rejected", zap.Error(err))
		s.respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	fb := &models.Feedback{
		Text:      claim.Text,
		ImageName: claim.ImageName,
		Model:     claim.Model,
		Rating:    req.Rating,
	}
	id, err := s.store.CreateFeedback(r.Context(), fb)
	if err != nil {
		s.logger.Error("create feedback failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "create feedback failed")
		return
	}
	s.logger.Debug("feedback created",
		zap.Int64("id", id),
		zap.String("image_name", claim.ImageName),
		zap.Int("rating", req.Rating),
	)
	s.respondJSON(w, http.StatusCreated, models.FeedbackResponse{ID: id})
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountFeedback(r.Context())
	if err != nil {
		s.logger.Error("status: count feedback failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "status failed")
		return
	}
	resp := map[string]interface{}{
		"feedback": count,
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"model":                s.config.Embedding.Model,
			"embedding_dimensions": s.config.Embedding.Dimensions,
			"collection":           s.config.Vector.Collection,
			"ingest_directory":     s.config.Ingest.Directory,
			"ingest_interval_s":    s.config.Ingest.IntervalSeconds,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
