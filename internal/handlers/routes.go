package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts every API endpoint. It is meant to be mounted under /api/v1.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/process", func(r chi.Router) {
		r.Post("/text", h.ProcessText)
		r.Post("/image", h.ProcessImage)
		r.Post("/form", h.ProcessForm)
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.ListHistory)
		r.Get("/stats", h.GetHistoryStats)
		r.Get("/{id}", h.GetHistory)
		r.Delete("/{id}", h.DeleteHistory)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/heroes", h.GetHeroWinRates)
		r.Get("/heroes/{heroId}/matchups", h.GetHeroMatchups)
		r.Get("/sides", h.GetSideComparison)
		r.Get("/teams", h.GetTeamWinRates)
		r.Get("/teams/head-to-head", h.GetHeadToHead)
		r.Post("/query", h.RunStatsQuery)
	})

	r.Post("/predict", h.PredictMatch)
	r.Post("/ingest/matches", h.IngestMatches)
	r.Post("/system/install", h.InstallDatabase)

	return r
}
