// Package tasks runs the named media-manager operations.
//
// A Runner executes generate-media-list, check-missing-media,
// manage-file-retention, check-windows-filenames and complete-check on a
// worker pool, allows one run of each operation at a time, and records every
// run in the run history database. A Scheduler triggers operations at the
// times given in the automation configuration.
package tasks
