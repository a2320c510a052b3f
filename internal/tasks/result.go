package tasks

import (
	"fmt"
	"time"
)

// Result is the outcome of one operation run.
type Result struct {
	Operation  string         `json:"operation"`
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Counts     map[string]int `json:"counts"`
	Files      []string       `json:"files,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`

	// Steps holds the sub-results of complete-check.
	Steps []*Result `json:"steps,omitempty"`

	// Err is the failure behind Message, if any.
	Err error `json:"-"`
}

func newResult(operation string) *Result {
	return &Result{
		Operation: operation,
		Counts:    make(map[string]int),
	}
}

func (r *Result) fail(err error) *Result {
	r.Success = false
	r.Err = err
	r.Message = err.Error()
	return r
}

func (r *Result) succeed(format string, args ...interface{}) *Result {
	r.Success = true
	r.Err = nil
	r.Message = fmt.Sprintf(format, args...)
	return r
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
