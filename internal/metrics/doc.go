// Package metrics provides Prometheus instrumentation for media-manager.
//
// All metrics are prefixed with "media_manager_" and registered with the
// default registry through promauto; the serve command exposes them on
// /metrics.
//
// # Metric Categories
//
// ## Operations
//   - TaskRunsTotal, TaskDuration, TaskLastRunTimestamp: per named operation
//     (generate-media-list, check-missing-media, ...)
//   - TasksRunning: operations in flight
//
// ## Core engine
//   - ScanRunsTotal, ScanDuration, ScanFilesMatched, ScanRootErrors,
//     ScanDirectoriesPruned: directory scanning
//   - SnapshotWritesTotal, SnapshotEntries, SnapshotFiles: snapshot store
//   - MissingMediaLast, MissingMediaTotal, NotificationsTotal: comparisons
//   - FilenameIssuesLast, FilenameIssuesByKind, FixesAppliedTotal: validation
//   - RetentionDeletedTotal, RetentionFailuresTotal: pruning
//
// ## Infrastructure
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//   - DBQueryTotal, DBQueryDuration, DBConnectionsOpen: run history
//   - Filesystem*: per-volume operation timings and NFS retry counters,
//     recorded through the filesystem.Observer implemented in observer.go
//
// InitializeMetrics pre-populates label combinations so dashboards see every
// series from the first scrape. Collector refreshes the on-disk snapshot
// counts on an interval.
package metrics
