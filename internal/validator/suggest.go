package validator

import (
	"strings"
	"unicode/utf8"
)

const (
	reservedSuffix = "_file"
	emptyStem      = "file"
)

// FixProposal is a suggested rename for one path.
type FixProposal struct {
	Path      string `json:"path"`
	Suggested string `json:"suggested"`
	// Target is Path with the file name replaced by Suggested.
	Target string `json:"target"`
}

// Suggest proposes a compliant file name for path. ok is false when the
// normalized name equals the current one.
func Suggest(path string) (name string, ok bool) {
	original := baseName(path)

	// Every pass that changes the name either shortens it or resolves a
	// reserved or empty stem, so the loop settles well within this bound.
	maxPasses := utf8.RuneCountInString(original) + 8

	name = original
	for i := 0; i < maxPasses; i++ {
		next := normalize(name)
		if next == name {
			break
		}
		name = next
	}

	if name == original {
		return "", false
	}
	return name, true
}

// Proposals returns a proposal for every path in results whose name can be
// fixed, sorted by path.
func Proposals(results Results) []FixProposal {
	var proposals []FixProposal
	for _, p := range results.Paths() {
		suggested, ok := Suggest(p)
		if !ok {
			continue
		}
		proposals = append(proposals, FixProposal{
			Path:      p,
			Suggested: suggested,
			Target:    dirName(p) + suggested,
		})
	}
	return proposals
}

// normalize is one pass of the pipeline described in the package comment.
func normalize(filename string) string {
	// 1. invalid characters
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(InvalidCharacters, r) {
			return '_'
		}
		return r
	}, filename)

	// 2. control characters
	name = strings.Map(func(r rune) rune {
		if isControl(r) {
			return -1
		}
		return r
	}, name)

	// 3. trailing periods and spaces
	name = strings.TrimRight(name, ". ")
	stem, ext := splitExt(name)
	stem = nonEmpty(strings.TrimRight(stem, ". "))

	// 4. reserved device names
	if reservedNames[strings.ToUpper(stem)] {
		stem += reservedSuffix
	}

	// 5. length
	stem, ext = truncate(stem, ext, MaxFilenameLength)

	// 6. underscore runs
	name = collapseUnderscores(stem + ext)

	// 7. underscores around the stem
	stem, ext = splitExt(name)
	stem = nonEmpty(strings.Trim(stem, "_"))

	return stem + ext
}

func nonEmpty(stem string) string {
	if stem == "" {
		return emptyStem
	}
	return stem
}

// truncate shortens stem so that stem+ext is at most limit runes. An
// extension that alone reaches the limit is cut as well.
func truncate(stem, ext string, limit int) (string, string) {
	stemRunes := []rune(stem)
	extRunes := []rune(ext)
	if len(stemRunes)+len(extRunes) <= limit {
		return stem, ext
	}
	if len(extRunes) >= limit {
		whole := append(stemRunes, extRunes...)
		return string(whole[:limit]), ""
	}
	return string(stemRunes[:limit-len(extRunes)]), ext
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}
