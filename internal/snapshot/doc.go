// Package snapshot persists scan results and reports as timestamped text
// files under an output root.
//
// Each category has its own directory and file prefix:
//
//	media_lists/      media_list_YYYYMMDD_HHMMSS.txt
//	missing_media/    missing_media_YYYYMMDD_HHMMSS.txt
//	filename_issues/  windows_filename_issues_YYYYMMDD_HHMMSS.txt
//
// A snapshot file holds one path per line, terminated by "\n", with no
// header. Directories are created on first write. The timestamp has second
// granularity, so two saves in the same category within one second write the
// same file name and the later save replaces the earlier one. Writes go
// through a temporary file and a rename, so readers never observe a partial
// snapshot.
//
// Snapshots within a category are ordered by file modification time, newest
// first. Loading a snapshot yields a Set: blank lines are skipped, trailing
// whitespace is trimmed, and duplicate lines collapse.
package snapshot
