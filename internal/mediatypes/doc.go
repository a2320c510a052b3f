// Package mediatypes defines the media file extensions media-manager scans
// for and a case-insensitive ExtensionSet used by the scanner.
//
// Extensions are normalized to lower case with a single leading dot, so the
// configuration may list "MKV", ".mkv" or "mkv" interchangeably:
//
//	set := mediatypes.NewExtensionSet(".MP4", "mkv")
//	set.Matches("Movie.Mp4") // true
//	set.Matches("notes.txt") // false
//
// DefaultExtensions (.mp4, .mkv, .avi) apply when the configuration lists
// none.
package mediatypes
