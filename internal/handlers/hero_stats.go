package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oraculo/stats-api/internal/logic"
)

// GetHeroWinRates returns per-hero win rates
// @Summary Hero Win Rates
// @Tags Heroes
// @Produce json
// @Param days query int false "Days to look back" default(30)
// @Param min_games query int false "Minimum games" default(1)
// @Success 200 {array} models.WinRateRow
// @Router /stats/heroes [get]
func (h *Handler) GetHeroWinRates(w http.ResponseWriter, r *http.Request) {
	rows, err := h.heroStats.GetHeroWinRates(r.Context(), queryInt(r, "days", 0), queryInt(r, "min_games", 0))
	if err != nil {
		h.logger.Errorw("Failed to get hero win rates", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to calculate hero win rates")
		return
	}
	h.jsonResponse(w, http.StatusOK, rows)
}

// GetHeroMatchups returns a hero's record against every opponent hero
// @Summary Hero Matchups
// @Tags Heroes
// @Produce json
// @Param heroId path int true "Hero ID"
// @Param days query int false "Days to look back" default(30)
// @Param min_games query int false "Minimum games" default(1)
// @Success 200 {array} models.HeroMatchup
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /stats/heroes/{heroId}/matchups [get]
func (h *Handler) GetHeroMatchups(w http.ResponseWriter, r *http.Request) {
	heroID, err := strconv.Atoi(chi.URLParam(r, "heroId"))
	if err != nil || heroID <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid hero ID")
		return
	}

	rows, err := h.heroStats.GetHeroMatchups(r.Context(), heroID, queryInt(r, "days", 0), queryInt(r, "min_games", 0))
	if err != nil {
		h.logger.Errorw("Failed to get hero matchups", "error", err, "heroID", heroID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to calculate matchups")
		return
	}
	h.jsonResponse(w, http.StatusOK, rows)
}

// RunStatsQuery executes a whitelisted dynamic aggregation
// @Summary Dynamic Stats Query
// @Description Group by hero, team, side, league, patch or account and aggregate one metric
// @Tags Stats
// @Accept json
// @Produce json
// @Param body body logic.DynamicQueryRequest true "Query"
// @Success 200 {array} logic.QueryResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /stats/query [post]
func (h *Handler) RunStatsQuery(w http.ResponseWriter, r *http.Request) {
	var req logic.DynamicQueryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rows, err := h.query.RunStatsQuery(r.Context(), req)
	if errors.Is(err, logic.ErrInvalidQuery) {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to run stats query", "error", err, "dimension", req.Dimension, "metric", req.Metric)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to run query")
		return
	}
	if rows == nil {
		rows = []logic.QueryResult{}
	}
	h.jsonResponse(w, http.StatusOK, rows)
}
