package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/storage/history"
)

// ListHistory returns stored analyses, newest first
// @Summary List Analyses
// @Tags History
// @Produce json
// @Param source query string false "text, image, form or import"
// @Param limit query int false "Page size (max 100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Analysis
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /history [get]
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	switch models.AnalysisSource(source) {
	case "", models.SourceText, models.SourceImage, models.SourceForm, models.SourceImport:
	default:
		h.errorResponse(w, http.StatusBadRequest, "Unknown source")
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit <= 0 || limit > history.MaxListLimit {
		limit = history.MaxListLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.history.List(r.Context(), history.ListFilter{Source: source, Limit: limit, Offset: offset})
	if err != nil {
		h.logger.Errorw("Failed to list history", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	if items == nil {
		items = []models.Analysis{}
	}
	h.jsonResponse(w, http.StatusOK, items)
}

// GetHistoryStats summarises stored analyses
// @Summary History Stats
// @Tags History
// @Produce json
// @Success 200 {object} models.HistoryStats
// @Router /history/stats [get]
func (h *Handler) GetHistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to get history stats", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get history stats")
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}

// GetHistory returns one analysis
// @Summary Get Analysis
// @Tags History
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} models.Analysis
// @Failure 404 {object} map[string]string "Not Found"
// @Router /history/{id} [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.historyID(w, r)
	if !ok {
		return
	}
	a, err := h.history.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to get analysis", "error", err, "id", id)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}
	h.jsonResponse(w, http.StatusOK, a)
}

// DeleteHistory removes one analysis
// @Summary Delete Analysis
// @Tags History
// @Param id path string true "Analysis ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /history/{id} [delete]
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.historyID(w, r)
	if !ok {
		return
	}
	err := h.history.Delete(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to delete analysis", "error", err, "id", id)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) historyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid analysis ID")
		return uuid.Nil, false
	}
	return id, true
}
