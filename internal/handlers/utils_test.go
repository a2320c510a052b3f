package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "Simple map",
			input:    map[string]string{"status": "ok"},
			expected: `{"status":"ok"}`,
		},
		{
			name:     "String slice",
			input:    []string{"a", "b", "c"},
			expected: `["a","b","c"]`,
		},
		{
			name:     "Number",
			input:    42,
			expected: `42`,
		},
		{
			name:     "Nil",
			input:    nil,
			expected: `null`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			writeJSON(w, tt.input)

			if got := strings.TrimSpace(w.Body.String()); got != tt.expected {
				t.Errorf("writeJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWriteJSONHandlesInvalidTypes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()

	// Channels cannot be encoded; the error is logged, not returned
	writeJSON(w, make(chan int))
}

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSONError(w, "check-missing-media is already running", http.StatusConflict)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "check-missing-media is already running" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestWriteJSONResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSONResponse(w, http.StatusCreated, map[string]int{"runs": 3})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"runs":3}` {
		t.Errorf("body = %q", got)
	}
}
