// Package database provides the SQLite run history for the media manager.
//
// Every task execution, manual or scheduled, is recorded as a Run together
// with its counts and the snapshot files it wrote. A small key/value metadata
// table holds state that must survive restarts, such as the size of the last
// missing-media set.
//
// The database uses WAL mode so the server and a CLI invocation can share the
// same file.
package database
