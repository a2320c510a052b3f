package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"media-manager/internal/database"
	"media-manager/internal/logging"
	"media-manager/internal/tasks"

	"github.com/gorilla/mux"
)

// ScheduleEntry is a scheduled task with its next run time.
type ScheduleEntry struct {
	tasks.ScheduledTask
	NextRun time.Time `json:"nextRun"`
}

// TaskListResponse lists the operations and the automation schedule.
type TaskListResponse struct {
	Operations []tasks.OperationInfo `json:"operations"`
	Schedule   []ScheduleEntry       `json:"schedule"`
}

// ListTasks returns every operation with its running state and the
// scheduled runs.
func (h *Handlers) ListTasks(w http.ResponseWriter, _ *http.Request) {
	response := TaskListResponse{
		Operations: h.runner.Describe(),
		Schedule:   []ScheduleEntry{},
	}

	if h.scheduler != nil {
		now := time.Now()
		for _, task := range h.scheduler.Tasks() {
			response.Schedule = append(response.Schedule, ScheduleEntry{
				ScheduledTask: task,
				NextRun:       task.Next(now),
			})
		}
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// RunTask runs the operation named in the path and returns its result. The
// request waits for the run to finish; a client that disconnects does not
// stop an operation that has already started.
func (h *Handlers) RunTask(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := h.runner.Run(r.Context(), name, database.TriggerAPI)
	switch {
	case errors.Is(err, tasks.ErrUnknownOperation):
		writeJSONError(w, "unknown operation: "+name, http.StatusNotFound)
		return
	case errors.Is(err, tasks.ErrAlreadyRunning):
		writeJSONError(w, name+" is already running", http.StatusConflict)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Warn("Client stopped waiting for %s: %v", name, err)
		writeJSONError(w, "request ended before the operation finished", http.StatusGatewayTimeout)
		return
	case err != nil:
		logging.Error("Failed to run %s: %v", name, err)
		writeJSONError(w, "failed to run operation", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}
