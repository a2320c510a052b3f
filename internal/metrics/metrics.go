package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_manager_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_manager_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_db_queries_total",
			Help: "Total number of run history database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_manager_db_query_duration_seconds",
			Help:    "Run history query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_manager_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_scan_runs_total",
			Help: "Total number of directory scans",
		},
		[]string{"status"}, // "success", "partial", "error"
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_manager_scan_duration_seconds",
			Help:    "Duration of a full scan over all roots",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	ScanFilesMatched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_manager_scan_files_matched",
			Help: "Number of media files matched by the last scan",
		},
	)

	ScanDirectoriesPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_manager_scan_hidden_directories_pruned_total",
			Help: "Total number of hidden directories skipped during scans",
		},
	)

	ScanRootErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_scan_root_errors_total",
			Help: "Total number of scan roots that could not be scanned",
		},
		[]string{"reason"}, // "missing", "unreadable"
	)
)

// Snapshot store metrics
var (
	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_snapshot_writes_total",
			Help: "Total number of snapshot and report files written",
		},
		[]string{"category", "status"},
	)

	SnapshotEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_manager_snapshot_entries",
			Help: "Number of entries in the last snapshot written per category",
		},
		[]string{"category"},
	)

	SnapshotFiles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_manager_snapshot_files",
			Help: "Number of snapshot files currently on disk per category",
		},
		[]string{"category"},
	)

	SnapshotNewestTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_manager_snapshot_newest_timestamp_seconds",
			Help: "Modification time of the newest snapshot file per category",
		},
		[]string{"category"},
	)
)

// Diff metrics
var (
	MissingMediaLast = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_manager_missing_media_last",
			Help: "Number of missing media files found by the last comparison",
		},
	)

	MissingMediaTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_manager_missing_media_total",
			Help: "Total number of missing media files reported",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_notifications_total",
			Help: "Total number of missing media notifications",
		},
		[]string{"status"}, // "sent", "failed", "disabled"
	)
)

// Filename validation metrics
var (
	FilenameIssuesLast = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_manager_filename_issue_paths_last",
			Help: "Number of paths with naming issues in the last validation",
		},
	)

	FilenameIssuesByKind = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_manager_filename_issues_last",
			Help: "Number of issues by rule in the last validation",
		},
		[]string{"kind"},
	)

	FixesAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_filename_fixes_total",
			Help: "Total number of filename fixes attempted",
		},
		[]string{"status"}, // "renamed", "skipped", "failed"
	)
)

// Retention metrics
var (
	RetentionDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_retention_deleted_total",
			Help: "Total number of files deleted by retention",
		},
		[]string{"category"},
	)

	RetentionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_retention_failures_total",
			Help: "Total number of files retention failed to delete",
		},
		[]string{"category"},
	)
)

// Task metrics
var (
	TaskRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_task_runs_total",
			Help: "Total number of operation runs",
		},
		[]string{"operation", "status"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_manager_task_duration_seconds",
			Help:    "Operation run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"operation"},
	)

	TaskLastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_manager_task_last_run_timestamp",
			Help: "Unix timestamp of the last run per operation",
		},
		[]string{"operation"},
	)

	TasksRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_manager_tasks_running",
			Help: "Number of operations currently running",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_manager_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after ESTALE",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_manager_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_manager_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_manager_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
