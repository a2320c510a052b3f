package diff

import (
	"strings"

	"media-manager/internal/snapshot"
)

// Missing returns older - newer.
func Missing(older, newer snapshot.Snapshot) snapshot.Set {
	return Difference(older.Entries, newer.Entries)
}

// Difference returns the paths of a that are not in b.
func Difference(a, b snapshot.Set) snapshot.Set {
	out := make(snapshot.Set)
	for p := range a {
		if !b.Has(p) {
			out.Add(p)
		}
	}
	return out
}

// Sorted returns the paths of s in lexicographic order.
func Sorted(s snapshot.Set) []string {
	return s.Sorted()
}

// Report renders a missing set as the body of a missing-media file: one
// sorted path per line, each terminated by "\n". An empty set renders as "".
func Report(missing snapshot.Set) string {
	if missing.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range missing.Sorted() {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}
