// Package logging provides the leveled logger used by every media-manager
// component.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-file scan and prune detail)
//   - INFO: Operation progress and results
//   - WARN: Recoverable problems (skipped roots, failed deletions)
//   - ERROR: Operation failures
//   - FATAL: Errors that terminate the process
//
// The level is read once from the DEBUG or LOG_LEVEL environment variables
// and can be overridden with SetLevel (the CLI does this for --verbose).
package logging
