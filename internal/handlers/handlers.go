package handlers

import (
	"time"

	"media-manager/internal/database"
	"media-manager/internal/snapshot"
	"media-manager/internal/tasks"
)

// Handlers serves the HTTP API.
type Handlers struct {
	runner    *tasks.Runner
	scheduler *tasks.Scheduler
	db        *database.Database
	store     *snapshot.Store
	startTime time.Time
}

// New creates the API handlers. scheduler and db may be nil.
func New(runner *tasks.Runner, scheduler *tasks.Scheduler, db *database.Database, store *snapshot.Store) *Handlers {
	return &Handlers{
		runner:    runner,
		scheduler: scheduler,
		db:        db,
		store:     store,
		startTime: time.Now(),
	}
}
