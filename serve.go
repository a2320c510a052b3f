package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-manager/internal/database"
	"media-manager/internal/filesystem"
	"media-manager/internal/handlers"
	"media-manager/internal/logging"
	"media-manager/internal/metrics"
	"media-manager/internal/middleware"
	"media-manager/internal/notify"
	"media-manager/internal/snapshot"
	"media-manager/internal/startup"
	"media-manager/internal/tasks"
	"media-manager/internal/workers"

	"github.com/gorilla/mux"
)

const (
	// How often snapshot counts and database gauges are refreshed
	metricsInterval = time.Minute
	// Queue depth of the task worker pool
	taskQueueSize = 16
	// Time allowed for in-flight requests and runs during shutdown
	shutdownTimeout = 30 * time.Second
)

// serve runs the HTTP API and the scheduler until SIGINT or SIGTERM.
func serve(cfg *startup.Config) int {
	startTime := time.Now()

	startup.PrintBanner()
	startup.LogSystemInfo()
	startup.LogConfig(cfg)

	if err := startup.PrepareDirectories(cfg); err != nil {
		logging.Error("Directory setup failed: %v", err)
		return 1
	}

	metrics.InitializeMetrics()
	info := startup.GetBuildInfo()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(cfg.Volumes())

	dbStart := time.Now()
	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		logging.Error("Failed to initialize database: %v", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("Failed to close database: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	store := snapshot.NewStore(cfg.OutputDirectory)
	pool := workers.NewPool(workers.ForIO(len(tasks.Operations)), taskQueueSize)
	runner := tasks.NewRunner(cfg, store, db, notify.New(cfg.Email), pool)

	startup.LogSchedulerInit(cfg.Automation)
	scheduler, err := tasks.NewScheduler(runner, cfg.Automation)
	if err != nil {
		logging.Error("Invalid automation configuration: %v", err)
		pool.Close()
		return 1
	}
	scheduler.Start()

	collector := metrics.NewCollector(&statsAdapter{store: store, db: db}, metricsInterval)
	collector.Start()

	h := handlers.New(runner, scheduler, db, store)
	router := setupRouter(h, cfg.MetricsEnabled)
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	// WriteTimeout is left at zero: POST /api/tasks waits for the run.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Port,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	exitCode := 0
	select {
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case err := <-serverErr:
		logging.Error("Server error: %v", err)
		exitCode = 1
	}

	shutdown(srv, scheduler, collector, pool)
	return exitCode
}

func shutdown(srv *http.Server, scheduler *tasks.Scheduler, collector *metrics.Collector, pool *workers.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping scheduler")
	scheduler.Stop()
	startup.LogShutdownStepComplete("Scheduler stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Waiting for running operations")
	pool.Close()
	startup.LogShutdownStepComplete("Worker pool drained")

	startup.LogShutdownComplete()
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	api.HandleFunc("/tasks/{name}", h.RunTask).Methods("POST")
	api.HandleFunc("/runs", h.ListRuns).Methods("GET")
	api.HandleFunc("/snapshots/{category}", h.ListSnapshots).Methods("GET")
	api.HandleFunc("/issues", h.ListIssues).Methods("GET")

	return r
}

// statsAdapter feeds snapshot counts to the metrics collector and refreshes
// the database connection gauge on the same tick.
type statsAdapter struct {
	store *snapshot.Store
	db    *database.Database
}

// GetStats implements metrics.StatsProvider
func (a *statsAdapter) GetStats() metrics.Stats {
	if a.db != nil {
		a.db.UpdateDBMetrics()
	}
	return a.store.GetStats()
}
