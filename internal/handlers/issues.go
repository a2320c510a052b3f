package handlers

import (
	"errors"
	"net/http"

	"media-manager/internal/logging"
	"media-manager/internal/snapshot"
	"media-manager/internal/tasks"
	"media-manager/internal/validator"
)

// IssueEntry is one path with its naming issues.
type IssueEntry struct {
	Path      string   `json:"path"`
	Issues    []string `json:"issues"`
	Suggested string   `json:"suggested,omitempty"`
}

// IssuesResponse is the validation of the newest media list.
type IssuesResponse struct {
	Snapshot *snapshot.Handle       `json:"snapshot"`
	Checked  int                    `json:"checked"`
	Files    []IssueEntry           `json:"files"`
	ByKind   map[validator.Kind]int `json:"byKind"`
}

// ListIssues validates the newest media list and returns every path with a
// Windows naming issue, together with a suggested name where one exists.
func (h *Handlers) ListIssues(w http.ResponseWriter, _ *http.Request) {
	handle, results, err := h.runner.LatestIssues()
	if errors.Is(err, tasks.ErrNoMediaList) {
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("Failed to validate media list: %v", err)
		writeJSONError(w, "failed to validate media list", http.StatusInternalServerError)
		return
	}

	suggested := make(map[string]string)
	for _, p := range validator.Proposals(results) {
		suggested[p.Path] = p.Suggested
	}

	response := IssuesResponse{
		Snapshot: handle,
		Checked:  handle.Entries,
		Files:    make([]IssueEntry, 0, len(results)),
		ByKind:   results.CountByKind(),
	}
	for _, path := range results.Paths() {
		entry := IssueEntry{Path: path, Suggested: suggested[path]}
		for _, issue := range results[path] {
			entry.Issues = append(entry.Issues, issue.String())
		}
		response.Files = append(response.Files, entry)
	}

	writeJSONResponse(w, http.StatusOK, response)
}
