package snapshot

import (
	"fmt"
	"time"
)

// Category names a family of snapshot files sharing a directory and prefix.
type Category string

const (
	MediaLists     Category = "media_lists"
	MissingMedia   Category = "missing_media"
	FilenameIssues Category = "filename_issues"
)

// Categories lists every known category.
var Categories = []Category{MediaLists, MissingMedia, FilenameIssues}

// TimestampLayout is the capture time embedded in file names.
const TimestampLayout = "20060102_150405"

const fileExtension = ".txt"

var prefixes = map[Category]string{
	MediaLists:     "media_list",
	MissingMedia:   "missing_media",
	FilenameIssues: "windows_filename_issues",
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown snapshot category %q", s)
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := prefixes[c]
	return ok
}

// Prefix returns the file name prefix, e.g. "media_list".
func (c Category) Prefix() string {
	return prefixes[c]
}

// Pattern returns the glob matching this category's files.
func (c Category) Pattern() string {
	return c.Prefix() + "_*" + fileExtension
}

// FileName returns the file name for a capture at t.
func (c Category) FileName(t time.Time) string {
	return c.Prefix() + "_" + t.Format(TimestampLayout) + fileExtension
}

// parseCaptureTime extracts the timestamp from a file name produced by
// FileName. ok is false for names that do not carry one.
func (c Category) parseCaptureTime(name string) (time.Time, bool) {
	prefix := c.Prefix() + "_"
	if len(name) != len(prefix)+len(TimestampLayout)+len(fileExtension) {
		return time.Time{}, false
	}
	stamp := name[len(prefix) : len(prefix)+len(TimestampLayout)]
	t, err := time.ParseInLocation(TimestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c Category) String() string {
	return string(c)
}
