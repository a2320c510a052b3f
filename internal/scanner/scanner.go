package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"media-manager/internal/filesystem"
	"media-manager/internal/logging"
	"media-manager/internal/mediatypes"
	"media-manager/internal/metrics"
)

// Root error reasons, also used as metric label values.
const (
	ReasonMissing    = "missing"
	ReasonUnreadable = "unreadable"
)

// RootError reports a scan root that could not be scanned.
type RootError struct {
	Root   string
	Reason string
	Err    error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("scan root %s %s: %v", e.Root, e.Reason, e.Err)
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a scan.
type Result struct {
	Paths      []string
	RootErrors []*RootError

	// HiddenPruned counts hidden directories whose subtrees were skipped.
	HiddenPruned int
	// SkippedDirs counts unreadable directories below a root.
	SkippedDirs int
}

// Err joins the per-root errors, or returns nil when every root was scanned.
func (r Result) Err() error {
	if len(r.RootErrors) == 0 {
		return nil
	}
	errs := make([]error, len(r.RootErrors))
	for i, re := range r.RootErrors {
		errs[i] = re
	}
	return errors.Join(errs...)
}

// Scanner walks root directories looking for media files.
type Scanner struct {
	extensions mediatypes.ExtensionSet
	retry      filesystem.RetryConfig
}

// New creates a scanner that matches the given extensions.
func New(extensions mediatypes.ExtensionSet) *Scanner {
	return &Scanner{
		extensions: extensions,
		retry:      filesystem.DefaultRetryConfig(),
	}
}

// Scan is shorthand for New(extensions).Scan(roots).
func Scan(roots []string, extensions mediatypes.ExtensionSet) Result {
	return New(extensions).Scan(roots)
}

// Scan walks every root in order and returns the matching files.
func (s *Scanner) Scan(roots []string) Result {
	start := time.Now()
	var result Result

	for _, root := range roots {
		if rootErr := s.scanRoot(root, &result); rootErr != nil {
			logging.Warn("Skipping scan root: %v", rootErr)
			metrics.ScanRootErrors.WithLabelValues(rootErr.Reason).Inc()
			result.RootErrors = append(result.RootErrors, rootErr)
		}
	}

	status := "success"
	switch {
	case len(roots) > 0 && len(result.RootErrors) == len(roots):
		status = "error"
	case len(result.RootErrors) > 0 || result.SkippedDirs > 0:
		status = "partial"
	}

	metrics.ScanRunsTotal.WithLabelValues(status).Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	metrics.ScanFilesMatched.Set(float64(len(result.Paths)))
	metrics.ScanDirectoriesPruned.Add(float64(result.HiddenPruned))

	logging.Info("Scan finished in %v: %d files from %d roots (%d failed, %d hidden directories pruned)",
		time.Since(start).Round(time.Millisecond), len(result.Paths), len(roots), len(result.RootErrors), result.HiddenPruned)

	return result
}

func (s *Scanner) scanRoot(root string, result *Result) *RootError {
	info, err := filesystem.StatWithRetry(root, s.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RootError{Root: root, Reason: ReasonMissing, Err: err}
		}
		return &RootError{Root: root, Reason: ReasonUnreadable, Err: err}
	}
	if !info.IsDir() {
		return &RootError{Root: root, Reason: ReasonUnreadable, Err: errors.New("not a directory")}
	}

	entries, err := filesystem.ReadDirWithRetry(root, s.retry)
	if err != nil {
		return &RootError{Root: root, Reason: ReasonUnreadable, Err: err}
	}

	logging.Debug("Scanning root %s", root)
	s.walkEntries(root, entries, result)
	return nil
}

// walkEntries visits the files of dir before descending, matching the order
// a top-down walk reports them.
func (s *Scanner) walkEntries(dir string, entries []fs.DirEntry, result *Result) {
	var subdirs []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if strings.HasPrefix(name, ".") {
				logging.Debug("Pruning hidden directory %s", filepath.Join(dir, name))
				result.HiddenPruned++
				continue
			}
			subdirs = append(subdirs, filepath.Join(dir, name))
			continue
		}
		if s.extensions.Matches(name) {
			result.Paths = append(result.Paths, filepath.Join(dir, name))
		}
	}

	for _, sub := range subdirs {
		children, err := filesystem.ReadDirWithRetry(sub, s.retry)
		if err != nil {
			logging.Warn("Error reading directory %s: %v", sub, err)
			result.SkippedDirs++
			continue
		}
		s.walkEntries(sub, children, result)
	}
}

// Dedupe returns paths with duplicates removed, keeping the first occurrence.
func Dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
