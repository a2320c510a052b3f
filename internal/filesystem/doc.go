/*
Package filesystem provides the filesystem calls used by media-manager with
automatic retry for NFS stale file handle errors.

Media libraries are frequently NFS or SMB mounts. A scan that races a server
side change can see ESTALE on a directory that is perfectly readable a moment
later; retrying that single call is cheaper than failing the whole root.

# Operations

  - StatWithRetry, OpenWithRetry, ReadDirWithRetry: read side (scanner, snapshot loading)
  - RemoveWithRetry: retention pruning
  - RenameWithRetry: fix application and atomic writes
  - WriteFileAtomic: temp file + rename for snapshot and report files

Only ESTALE triggers retries; every other error is returned on the first
attempt. Defaults are 3 retries with 50ms → 100ms → 200ms backoff capped at
500ms.

	info, err := filesystem.StatWithRetry(root, filesystem.DefaultRetryConfig())

# Metrics

Each call reports its duration and outcome to the package Observer, labelled
with the volume resolved by the VolumeResolver (scan roots are "media", the
output directory "output", the run history "database"). The metrics package
supplies the Prometheus-backed Observer; with no observer set nothing is
recorded.
*/
package filesystem
