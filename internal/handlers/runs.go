package handlers

import (
	"net/http"
	"strconv"

	"media-manager/internal/logging"
)

// ListRuns returns the run history, newest first. The optional limit query
// parameter caps the number of runs returned.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSONError(w, "run history is not available", http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.db.RecentRuns(r.Context(), limit)
	if err != nil {
		logging.Error("Failed to list runs: %v", err)
		writeJSONError(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, runs)
}
