package validator

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFilenameLength is the longest file name Windows accepts, in runes.
	MaxFilenameLength = 255
	// MaxPathLength is the classic MAX_PATH limit.
	MaxPathLength = 260
)

// InvalidCharacters are the characters Windows rejects in file names.
const InvalidCharacters = `<>:"|?*\/`

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Kind identifies a naming rule.
type Kind string

const (
	KindInvalidCharacters     Kind = "invalid_characters"
	KindControlCharacters     Kind = "control_characters"
	KindTrailingPeriodOrSpace Kind = "trailing_period_or_space"
	KindReservedName          Kind = "reserved_name"
	KindNameTooLong           Kind = "name_too_long"
	KindPathTooLong           Kind = "path_too_long"
	KindPaddedSegment         Kind = "padded_segment"
)

// Kinds lists every rule in evaluation order.
var Kinds = []Kind{
	KindInvalidCharacters,
	KindControlCharacters,
	KindTrailingPeriodOrSpace,
	KindReservedName,
	KindNameTooLong,
	KindPathTooLong,
	KindPaddedSegment,
}

// Issue is one rule violation. Only the fields relevant to Kind are set.
type Issue struct {
	Kind Kind `json:"kind"`
	// Characters holds the distinct invalid characters, sorted.
	Characters []string `json:"characters,omitempty"`
	// Name is the matched reserved device name.
	Name string `json:"name,omitempty"`
	// Length is the offending file name or path length.
	Length int `json:"length,omitempty"`
	// Segment is the path segment with surrounding whitespace.
	Segment string `json:"segment,omitempty"`
}

func (i Issue) String() string {
	switch i.Kind {
	case KindInvalidCharacters:
		return "Contains invalid characters: " + strings.Join(i.Characters, ", ")
	case KindControlCharacters:
		return "Contains control characters (ASCII 0-31)"
	case KindTrailingPeriodOrSpace:
		return "Filename ends with period or space"
	case KindReservedName:
		return "Uses reserved Windows name: " + i.Name
	case KindNameTooLong:
		return fmt.Sprintf("Filename too long (%d > %d characters)", i.Length, MaxFilenameLength)
	case KindPathTooLong:
		return fmt.Sprintf("Full path too long (%d > %d characters)", i.Length, MaxPathLength)
	case KindPaddedSegment:
		return fmt.Sprintf("Path component has leading/trailing spaces: '%s'", i.Segment)
	default:
		return string(i.Kind)
	}
}

// Results maps each path with at least one issue to its issues.
type Results map[string][]Issue

// Paths returns the paths in lexicographic order.
func (r Results) Paths() []string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// CountByKind counts issues per rule across all paths.
func (r Results) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, issues := range r {
		for _, issue := range issues {
			counts[issue.Kind]++
		}
	}
	return counts
}

// Validate returns every rule violation for path.
func Validate(path string) []Issue {
	var issues []Issue
	filename := baseName(path)
	stem, _ := splitExt(filename)

	if chars := invalidCharacters(filename); len(chars) > 0 {
		issues = append(issues, Issue{Kind: KindInvalidCharacters, Characters: chars})
	}

	if strings.IndexFunc(filename, isControl) >= 0 {
		issues = append(issues, Issue{Kind: KindControlCharacters})
	}

	if endsWithPeriodOrSpace(filename) || endsWithPeriodOrSpace(stem) {
		issues = append(issues, Issue{Kind: KindTrailingPeriodOrSpace})
	}

	if upper := strings.ToUpper(stem); reservedNames[upper] {
		issues = append(issues, Issue{Kind: KindReservedName, Name: upper})
	}

	if n := utf8.RuneCountInString(filename); n > MaxFilenameLength {
		issues = append(issues, Issue{Kind: KindNameTooLong, Length: n})
	}

	if n := utf8.RuneCountInString(path); n > MaxPathLength {
		issues = append(issues, Issue{Kind: KindPathTooLong, Length: n})
	}

	for _, segment := range strings.Split(path, "/") {
		if segment != strings.TrimSpace(segment) {
			issues = append(issues, Issue{Kind: KindPaddedSegment, Segment: segment})
		}
	}

	return issues
}

// ValidateAll validates every path. Paths without issues are left out of the
// result.
func ValidateAll(paths []string) Results {
	results := make(Results)
	for _, p := range paths {
		if issues := Validate(p); len(issues) > 0 {
			results[p] = issues
		}
	}
	return results
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func dirName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i+1]
	}
	return ""
}

// splitExt splits name at its last dot. Leading dots are part of the stem.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i:]
}

func invalidCharacters(name string) []string {
	seen := make(map[rune]bool)
	var chars []string
	for _, r := range name {
		if strings.ContainsRune(InvalidCharacters, r) && !seen[r] {
			seen[r] = true
			chars = append(chars, string(r))
		}
	}
	sort.Strings(chars)
	return chars
}

func isControl(r rune) bool {
	return r < 32
}

func endsWithPeriodOrSpace(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, " ")
}
