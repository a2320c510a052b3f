package snapshot

import "sort"

// Set is a set of paths. The zero value is not usable; use NewSet.
type Set map[string]struct{}

// NewSet returns a set holding paths.
func NewSet(paths ...string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s Set) Add(p string) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set.
func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of paths.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the paths in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether s and other hold the same paths.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if !other.Has(p) {
			return false
		}
	}
	return true
}
