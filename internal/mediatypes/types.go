package mediatypes

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions is used when the configuration names no extensions.
var DefaultExtensions = []string{".mp4", ".mkv", ".avi"}

// VideoExtensions lists the video container extensions the scanner knows
// about. It only feeds configuration hints; matching uses the configured set.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// NormalizeExtension lower-cases ext and ensures a single leading dot.
// Empty or dot-only input returns "".
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// ExtensionSet is a case-insensitive set of file extensions.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from extensions in any case, with or without
// the leading dot. Blank entries are ignored.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		if n := NormalizeExtension(ext); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Contains reports whether ext (any case) is in the set.
func (s ExtensionSet) Contains(ext string) bool {
	_, ok := s[NormalizeExtension(ext)]
	return ok
}

// Matches reports whether the extension of name is in the set. A dot file
// such as ".mp4" matches on its whole name.
func (s ExtensionSet) Matches(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	return s.Contains(ext)
}

// Sorted returns the extensions in lexical order.
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsVideo returns true if the extension is a known video container.
func IsVideo(ext string) bool {
	return VideoExtensions[NormalizeExtension(ext)]
}
