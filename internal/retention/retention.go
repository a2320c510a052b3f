package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"media-manager/internal/filesystem"
	"media-manager/internal/logging"
)

// ErrDirectoryMissing is returned when the directory to list or prune does
// not exist.
var ErrDirectoryMissing = errors.New("directory does not exist")

// File is a regular file found by ListByAge.
type File struct {
	Path    string
	Name    string
	ModTime time.Time
	Size    int64
}

// Result summarizes a prune.
type Result struct {
	// Kept is the number of matching files retained.
	Kept int
	// Deleted counts successful deletions only.
	Deleted int
	// Failed counts files that could not be deleted.
	Failed int
	// DeletedFiles lists the paths that were removed.
	DeletedFiles []string
}

// ListByAge returns the regular files in dir whose names match pattern,
// newest first.
func ListByAge(dir, pattern string) ([]File, error) {
	return listByAge(dir, pattern, filesystem.DefaultRetryConfig())
}

func listByAge(dir, pattern string, config filesystem.RetryConfig) ([]File, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := filesystem.ReadDirWithRetry(dir, config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryMissing, dir)
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			logging.Debug("Skipping %s: %v", entry.Name(), err)
			continue
		}

		files = append(files, File{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name > files[j].Name
	})

	return files, nil
}

// Prune keeps the keep most recent files in dir matching pattern and deletes
// the rest. A negative keep is treated as zero, which deletes every match.
func Prune(dir, pattern string, keep int) (Result, error) {
	config := filesystem.DefaultRetryConfig()

	files, err := listByAge(dir, pattern, config)
	if err != nil {
		return Result{}, err
	}

	if keep < 0 {
		keep = 0
	}
	if keep >= len(files) {
		logging.Debug("Retention for %s/%s: %d files, nothing to delete (keep %d)", dir, pattern, len(files), keep)
		return Result{Kept: len(files)}, nil
	}

	result := Result{Kept: keep}
	for _, f := range files[keep:] {
		if err := filesystem.RemoveWithRetry(f.Path, config); err != nil {
			logging.Warn("Failed to delete %s: %v", f.Path, err)
			result.Failed++
			continue
		}
		logging.Debug("Deleted old file %s", f.Path)
		result.Deleted++
		result.DeletedFiles = append(result.DeletedFiles, f.Path)
	}

	logging.Info("Retention for %s/%s: kept %d, deleted %d, failed %d",
		dir, pattern, result.Kept, result.Deleted, result.Failed)

	return result, nil
}
