package handlers

import (
	"net/http"

	"github.com/oraculo/stats-api/internal/models"
)

// PredictMatch returns the win probability forecast for a match
// @Summary Predict Match
// @Description Blends the draft model with team Elo; either teams or heroes must be given
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictRequest true "Teams and drafts"
// @Success 200 {object} models.MatchPrediction
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /predict [post]
func (h *Handler) PredictMatch(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.RadiantTeam == "" && req.DireTeam == "" && len(req.RadiantHeroes) == 0 && len(req.DireHeroes) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "Teams or heroes are required")
		return
	}

	pred, err := h.prediction.PredictMatch(r.Context(), req)
	if err != nil {
		h.logger.Errorw("Failed to predict match", "error", err, "radiant", req.RadiantTeam, "dire", req.DireTeam)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get prediction")
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}
