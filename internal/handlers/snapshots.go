package handlers

import (
	"net/http"

	"media-manager/internal/logging"
	"media-manager/internal/snapshot"

	"github.com/gorilla/mux"
)

// ListSnapshots returns the files of one category, newest first.
func (h *Handlers) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	category, err := snapshot.ParseCategory(mux.Vars(r)["category"])
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	handles, err := h.store.List(category)
	if err != nil {
		logging.Error("Failed to list %s: %v", category, err)
		writeJSONError(w, "failed to list snapshots", http.StatusInternalServerError)
		return
	}
	if handles == nil {
		handles = []snapshot.Handle{}
	}

	writeJSONResponse(w, http.StatusOK, handles)
}
