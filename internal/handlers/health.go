package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"media-manager/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Operations currently in progress
	Running []string `json:"running"`

	// Snapshot file counts per category
	SnapshotFiles map[string]int `json:"snapshotFiles,omitempty"`

	DatabaseError string `json:"databaseError,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The status is
// degraded, with a 503, when the run history database cannot be read.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Running:      h.runner.Running(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if h.store != nil {
		response.SnapshotFiles = h.store.GetStats().SnapshotFiles
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if _, err := h.db.RecentRuns(ctx, 1); err != nil {
			response.Status = statusDegraded
			response.DatabaseError = err.Error()
		}
	}

	statusCode := http.StatusOK
	if response.Status != statusHealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, statusCode, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}
