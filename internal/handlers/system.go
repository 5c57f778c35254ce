package handlers

import (
	"net/http"
)

// InstallDatabase creates the ClickHouse tables and applies the history migrations
// @Summary Install Database Schema
// @Description Runs the ClickHouse DDL and the PostgreSQL goose migrations
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	hasError := false

	// 1. PostgreSQL
	if h.migrateHistory == nil {
		results["postgres"] = "skipped"
	} else if err := h.migrateHistory(); err != nil {
		h.logger.Errorw("failed to migrate schema", "db", "PostgreSQL", "error", err)
		results["postgres"] = "failed: " + err.Error()
		hasError = true
	} else {
		h.logger.Infow("successfully installed schema", "db", "PostgreSQL")
		results["postgres"] = "success"
	}

	// 2. ClickHouse
	if h.facts == nil {
		results["clickhouse"] = "skipped"
	} else if err := h.facts.EnsureSchema(ctx); err != nil {
		h.logger.Errorw("failed to install schema", "db", "ClickHouse", "error", err)
		results["clickhouse"] = "failed: " + err.Error()
		hasError = true
	} else {
		h.logger.Infow("successfully installed schema", "db", "ClickHouse")
		results["clickhouse"] = "success"
	}

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}
