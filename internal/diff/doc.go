// Package diff computes which media paths disappeared between two
// snapshots.
//
// Missing is directional: it returns the paths present in the older snapshot
// and absent from the newer one. Paths that only appear in the newer
// snapshot are never reported. The computation is pure; callers load the
// snapshots and persist the result. Anything rendered from a result is
// sorted so repeated runs produce identical output.
package diff
