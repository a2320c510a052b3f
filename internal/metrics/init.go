package metrics

// Label values pre-populated by InitializeMetrics. Kept in one place so the
// producers and the exported series agree.
var (
	Categories     = []string{"media_lists", "missing_media", "filename_issues"}
	Operations     = []string{"generate-media-list", "check-missing-media", "manage-file-retention", "check-windows-filenames", "complete-check"}
	IssueKinds     = []string{"invalid_characters", "control_characters", "trailing_period_or_space", "reserved_name", "name_too_long", "path_too_long", "padded_segment"}
	volumes        = []string{"media", "output", "database", "unknown"}
	filesystemOps  = []string{"stat", "open", "readdir", "remove", "rename"}
	taskStatuses   = []string{"success", "error"}
	fixStatuses    = []string{"renamed", "skipped", "failed"}
	notifyStatuses = []string{"sent", "failed", "disabled"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, vol := range volumes {
		for _, op := range filesystemOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, status := range []string{"success", "partial", "error"} {
		ScanRunsTotal.WithLabelValues(status)
	}
	for _, reason := range []string{"missing", "unreadable"} {
		ScanRootErrors.WithLabelValues(reason)
	}

	for _, cat := range Categories {
		SnapshotWritesTotal.WithLabelValues(cat, "success")
		SnapshotWritesTotal.WithLabelValues(cat, "error")
		SnapshotEntries.WithLabelValues(cat)
		SnapshotFiles.WithLabelValues(cat)
		SnapshotNewestTimestamp.WithLabelValues(cat)
		RetentionDeletedTotal.WithLabelValues(cat)
		RetentionFailuresTotal.WithLabelValues(cat)
	}

	for _, kind := range IssueKinds {
		FilenameIssuesByKind.WithLabelValues(kind)
	}
	for _, status := range fixStatuses {
		FixesAppliedTotal.WithLabelValues(status)
	}
	for _, status := range notifyStatuses {
		NotificationsTotal.WithLabelValues(status)
	}

	for _, op := range Operations {
		for _, status := range taskStatuses {
			TaskRunsTotal.WithLabelValues(op, status)
		}
		TaskDuration.WithLabelValues(op)
		TaskLastRunTimestamp.WithLabelValues(op)
	}

	for _, op := range []string{"initialize_schema", "record_run", "recent_runs", "last_run", "get_metadata", "set_metadata", "prune_runs"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
