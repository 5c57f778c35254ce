package handlers

import (
	"net/http"

	"github.com/oraculo/stats-api/internal/models"
)

// IngestMatches handles POST /api/v1/ingest/matches
// @Summary Ingest Matches
// @Description Queues match IDs for fetching from OpenDota and loading into ClickHouse
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param body body models.IngestMatchesRequest true "Match IDs"
// @Success 202 {object} map[string]interface{} "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Queue full"
// @Router /ingest/matches [post]
func (h *Handler) IngestMatches(w http.ResponseWriter, r *http.Request) {
	var req models.IngestMatchesRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	unique := make([]int64, 0, len(req.MatchIDs))
	seen := make(map[int64]bool, len(req.MatchIDs))
	for _, id := range req.MatchIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	enqueued := 0
	for _, id := range unique {
		if !h.pool.Enqueue(id) {
			h.logger.Warnw("Worker pool queue full, dropping remaining matches", "enqueued", enqueued, "requested", len(unique))
			break
		}
		enqueued++
	}

	if enqueued == 0 {
		h.errorResponse(w, http.StatusServiceUnavailable, "Ingest queue is full")
		return
	}

	h.logger.Infow("Matches enqueued", "count", enqueued)
	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":   "accepted",
		"enqueued": enqueued,
		"dropped":  len(unique) - enqueued,
	})
}
