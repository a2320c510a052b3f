// Package main provides the media-manager command.
//
// media-manager keeps an inventory of a media library. Each scan writes a
// timestamped media list; comparing the two newest lists reports files that
// disappeared, and the newest list is checked for names Windows cannot store.
// Old lists and reports are pruned to a retention count.
//
// # Commands
//
// The one-shot commands run a single operation and exit non-zero when it
// fails:
//
//	media-manager scan       # generate-media-list
//	media-manager diff       # check-missing-media
//	media-manager prune      # manage-file-retention
//	media-manager validate   # check-windows-filenames
//	media-manager complete   # all four, in order
//	media-manager fix        # rename proposals; --apply renames
//
// The full operation names are accepted in place of the short ones.
//
// # Server Mode
//
// media-manager serve runs the automation scheduler together with an HTTP
// API:
//
//   - GET  /healthz, /livez, /version
//   - GET  /api/tasks and POST /api/tasks/{name}
//   - GET  /api/runs, /api/snapshots/{category}, /api/issues
//   - GET  /metrics (when METRICS_ENABLED is true)
//
// Runs are recorded in a SQLite database next to the output directory unless
// DATABASE_DIR says otherwise.
//
// # Configuration
//
// Settings are read from a JSON or YAML file (--config, MEDIA_MANAGER_CONFIG,
// or media_manager_config.json) and may be overridden by environment
// variables. Run "media-manager help" for the list.
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the server stops the scheduler and the metrics
// collector, drains HTTP requests, waits for running operations and closes
// the database.
package main
