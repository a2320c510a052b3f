// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads a JSON configuration file (media_manager_config.json
// by default, or YAML when the name ends in .yaml or .yml). Keys missing from
// the file keep their defaults:
//
//   - scan_directories: directories to scan (default: none)
//   - output_directory: root for snapshot and report files (default: ./lists)
//   - file_extensions.media / .additional: extensions to match
//     (default: .mp4 .mkv .avi)
//   - email: notification settings, see [EmailConfig.IsValid]
//   - file_retention_count: files kept per category (default: 100, minimum 1)
//   - automation: schedule per task, "HH:MM" daily or weekly (Sunday)
//
// Environment variables override the file:
//
//   - MEDIA_MANAGER_CONFIG: configuration file path
//   - OUTPUT_DIR: output directory
//   - SCAN_DIRS: scan directories, separated by the OS path list separator
//   - RETENTION_COUNT: file retention count
//   - DATABASE_DIR: run history database directory (default: output directory)
//   - PORT: HTTP server port for serve (default: 8080)
//   - METRICS_ENABLED: expose /metrics (default: true)
//   - LOG_HEALTH_CHECKS: log health check requests (default: false)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The serve command uses the logging helpers for consistent output:
//   - [LogConfig]: effective configuration, without secrets
//   - [LogDatabaseInit]: database initialization timing
//   - [LogSchedulerInit]: automation schedule
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: server endpoints and startup duration
//   - [LogShutdownInitiated]: graceful shutdown start
//   - [LogShutdownComplete]: shutdown completion
//
// # Example Usage
//
//	config, err := startup.LoadConfig(*configPath)
//	if err != nil {
//	    logging.Fatal("Configuration error: %v", err)
//	}
//	if err := startup.PrepareDirectories(config); err != nil {
//	    logging.Fatal("Directory setup failed: %v", err)
//	}
package startup
