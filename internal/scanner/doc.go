// Package scanner enumerates media files under a set of root directories.
//
// A scan walks every root recursively. Directories whose name begins with a
// dot are pruned, so nothing below them is visited. A file is kept when its
// extension, compared case-insensitively, is in the configured
// mediatypes.ExtensionSet.
//
// Roots fail independently. A root that does not exist or cannot be read
// is reported as a *RootError in Result.RootErrors and the remaining roots
// are still scanned. Unreadable directories below a root are logged and
// skipped.
//
// Result.Paths holds full paths in traversal order. Paths found under more
// than one root are kept twice; use Dedupe before persisting a snapshot.
package scanner
