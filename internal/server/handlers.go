package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/citation"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/preview"
	"github.com/hyperjump/erabu/internal/retrieval"
	"github.com/hyperjump/erabu/internal/whatif"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps core error kinds to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidTuningParameter),
		errors.Is(err, models.ErrMalformedTrace):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEmbeddingDimensionMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"embedding_model":  s.cfg.Embedding.Model,
		"semantic_enabled": s.cfg.Retrieval.SemanticEnabled,
		"default_limit":    s.cfg.Retrieval.DefaultLimit,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	var req struct {
		Query    string         `json:"query"`
		Keywords []string       `json:"keywords"`
		Chunks   []models.Chunk `json:"chunks"`
		Tuning   map[string]any `json:"tuning"`
		Plan     string         `json:"plan"`
		Trust    string         `json:"trust_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tuningCfg, err := models.ParseTuningConfig(req.Tuning)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.retrieval.Retrieve(r.Context(), retrieval.Request{
		Query:      req.Query,
		Keywords:   req.Keywords,
		Chunks:     req.Chunks,
		Tuning:     tuningCfg,
		Plan:       req.Plan,
		TrustLevel: req.Trust,
	})
	if err != nil {
		s.logger.Warn("retrieve failed",
			zap.String("request_id", requestID), zap.Error(err))
		s.respondError(w, errorStatus(err), err.Error())
		return
	}
	s.logger.Info("retrieve",
		zap.String("request_id", requestID),
		zap.Int("results", len(resp.Results)))
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	var req struct {
		Answer      string            `json:"answer"`
		ChunkIDs    []string          `json:"chunk_ids"`
		Trace       []models.TraceRef `json:"trace"`
		Chunks      []models.Chunk    `json:"chunks"`
		PaletteSize int               `json:"palette_size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	citations := citation.MapAnswerCitations(req.Answer, req.ChunkIDs, req.Trace, req.Chunks)
	chunksByID := make(map[string]models.Chunk, len(req.Chunks))
	for _, c := range req.Chunks {
		chunksByID[c.ChunkID()] = c
	}
	routes := preview.BuildRoutes(citations, chunksByID, req.PaletteSize)

	s.logger.Info("citations",
		zap.String("request_id", requestID),
		zap.Int("citations", len(citations)))
	s.respondJSON(w, http.StatusOK, map[string]any{
		"citations": citations,
		"routes":    routes,
	})
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	var req struct {
		Trace     map[string]any `json:"trace"`
		Overrides map[string]any `json:"overrides"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := whatif.Simulate(req.Trace, req.Overrides)
	if err != nil {
		s.logger.Warn("whatif failed",
			zap.String("request_id", requestID), zap.Error(err))
		s.respondError(w, errorStatus(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePagePreview(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "documentID")
	pageNumber, err := strconv.Atoi(chi.URLParam(r, "pageNumber"))
	if err != nil || pageNumber < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	chunkID := r.URL.Query().Get("chunk_id")
	citationID := r.URL.Query().Get("citation_id")

	s.respondJSON(w, http.StatusOK, map[string]any{
		"document_id": docID,
		"page_number": pageNumber,
		"chunk_id":    chunkID,
		"citation_id": citationID,
		"color_index": preview.ColorIndex(citationID, s.cfg.Retrieval.PaletteSize),
	})
}
