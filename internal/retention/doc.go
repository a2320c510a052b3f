// Package retention keeps a bounded history of files in a directory.
//
// Files matching a glob pattern are ranked newest first by modification
// time, with the file name (descending) breaking ties. Prune keeps the first
// keep files and removes the rest. Deletion is best-effort per file: a
// failure is logged and counted in Result.Failed and the remaining deletions
// still run.
//
// A directory that does not exist is reported as ErrDirectoryMissing so
// callers can tell it apart from a directory holding zero matching files.
package retention
