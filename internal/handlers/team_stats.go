package handlers

import (
	"net/http"
	"strings"
)

// ============================================================================
// TEAM / SIDE STATS ENDPOINTS
// ============================================================================

// GetSideComparison returns aggregated stats for Radiant vs Dire
// @Summary Side Performance Stats
// @Description Radiant vs Dire win rate, kills, duration and most picked hero over a period
// @Tags Teams
// @Produce json
// @Param days query int false "Days to look back" default(30)
// @Success 200 {object} models.SideStats
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /stats/sides [get]
func (h *Handler) GetSideComparison(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days <= 0 {
		days = 30
	}

	stats, err := h.teamStats.GetSideComparison(r.Context(), days)
	if err != nil {
		h.logger.Errorw("Failed to get side comparison", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to calculate side stats")
		return
	}

	h.jsonResponse(w, http.StatusOK, stats)
}

// GetTeamWinRates returns team win rates
// @Summary Team Win Rates
// @Tags Teams
// @Produce json
// @Param days query int false "Days to look back" default(30)
// @Param min_games query int false "Minimum games" default(1)
// @Success 200 {array} models.WinRateRow
// @Router /stats/teams [get]
func (h *Handler) GetTeamWinRates(w http.ResponseWriter, r *http.Request) {
	rows, err := h.teamStats.GetTeamWinRates(r.Context(), queryInt(r, "days", 0), queryInt(r, "min_games", 0))
	if err != nil {
		h.logger.Errorw("Failed to get team win rates", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to calculate team win rates")
		return
	}

	h.jsonResponse(w, http.StatusOK, rows)
}

// GetHeadToHead compares two teams
// @Summary Head to Head
// @Tags Teams
// @Produce json
// @Param a query string true "First team"
// @Param b query string true "Second team"
// @Success 200 {object} models.HeadToHead
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /stats/teams/head-to-head [get]
func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	a := strings.TrimSpace(r.URL.Query().Get("a"))
	b := strings.TrimSpace(r.URL.Query().Get("b"))
	if a == "" || b == "" {
		h.errorResponse(w, http.StatusBadRequest, "Query parameters a and b are required")
		return
	}

	h2h, err := h.teamStats.GetHeadToHead(r.Context(), a, b)
	if err != nil {
		h.logger.Errorw("Failed to get head to head", "error", err, "a", a, "b", b)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to calculate head to head")
		return
	}

	h.jsonResponse(w, http.StatusOK, h2h)
}
