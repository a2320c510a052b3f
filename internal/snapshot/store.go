package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-manager/internal/filesystem"
	"media-manager/internal/logging"
	"media-manager/internal/metrics"
	"media-manager/internal/retention"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	maxLineLength = 1 << 20
)

// FormatError reports a snapshot line that cannot be a path.
type FormatError struct {
	Path   string
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

// Handle identifies one snapshot file on disk.
type Handle struct {
	Category Category  `json:"category"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	ModTime  time.Time `json:"modTime"`
	Size     int64     `json:"size"`

	// CapturedAt is parsed from the file name; zero when the name carries no
	// timestamp.
	CapturedAt time.Time `json:"capturedAt"`
	// Entries is the number of lines written. Only set by Save.
	Entries int `json:"entries,omitempty"`
}

// Snapshot is the loaded content of one snapshot file.
type Snapshot struct {
	Category   Category
	CapturedAt time.Time
	Entries    Set
}

// Store reads and writes snapshot files under an output root.
type Store struct {
	root  string
	retry filesystem.RetryConfig
	now   func() time.Time
}

// NewStore creates a store rooted at dir. Nothing is created until the first
// write.
func NewStore(dir string) *Store {
	return &Store{
		root:  dir,
		retry: filesystem.DefaultRetryConfig(),
		now:   time.Now,
	}
}

// Root returns the output root.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory holding category c.
func (s *Store) Dir(c Category) string {
	return filepath.Join(s.root, string(c))
}

// Save writes entries as a new snapshot in category c. Duplicate entries are
// written once, in first-seen order. Entries that contain a line break or
// NUL byte cannot be stored in the line format and are skipped with a
// warning.
func (s *Store) Save(c Category, entries []string) (*Handle, error) {
	var b strings.Builder
	seen := make(map[string]struct{}, len(entries))
	written := 0

	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if strings.ContainsAny(entry, "\n\r\x00") {
			logging.Warn("Skipping path that cannot be stored in a snapshot: %q", entry)
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		b.WriteString(entry)
		b.WriteByte('\n')
		written++
	}

	h, err := s.write(c, b.String())
	if err != nil {
		return nil, err
	}
	h.Entries = written
	metrics.SnapshotEntries.WithLabelValues(string(c)).Set(float64(written))

	logging.Info("Saved %d entries to %s", written, h.Path)
	return h, nil
}

// SaveReport writes text as a new file in category c. The write is
// all-or-nothing.
func (s *Store) SaveReport(c Category, text string) (*Handle, error) {
	h, err := s.write(c, text)
	if err != nil {
		return nil, err
	}
	logging.Info("Saved report to %s", h.Path)
	return h, nil
}

func (s *Store) write(c Category, data string) (*Handle, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown snapshot category %q", c)
	}

	dir := s.Dir(c)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues(string(c), "error").Inc()
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	captured := s.now()
	name := c.FileName(captured)
	path := filepath.Join(dir, name)

	if _, err := os.Lstat(path); err == nil {
		logging.Warn("Snapshot %s already exists and will be replaced", path)
	}

	if err := filesystem.WriteFileAtomic(path, []byte(data), filePerm, s.retry); err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues(string(c), "error").Inc()
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	metrics.SnapshotWritesTotal.WithLabelValues(string(c), "success").Inc()

	h := &Handle{
		Category:   c,
		Name:       name,
		Path:       path,
		Size:       int64(len(data)),
		CapturedAt: captured.Truncate(time.Second),
		ModTime:    captured,
	}
	if info, err := filesystem.StatWithRetry(path, s.retry); err == nil {
		h.ModTime = info.ModTime()
	}
	return h, nil
}

// List returns the files of category c, newest first. A category directory
// that does not exist yields an empty list.
func (s *Store) List(c Category) ([]Handle, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown snapshot category %q", c)
	}

	files, err := retention.ListByAge(s.Dir(c), c.Pattern())
	if err != nil {
		if errors.Is(err, retention.ErrDirectoryMissing) {
			return nil, nil
		}
		return nil, err
	}

	handles := make([]Handle, 0, len(files))
	for _, f := range files {
		h := Handle{
			Category: c,
			Name:     f.Name,
			Path:     f.Path,
			ModTime:  f.ModTime,
			Size:     f.Size,
		}
		if t, ok := c.parseCaptureTime(f.Name); ok {
			h.CapturedAt = t
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// MostRecent returns the newest file of category c, or nil when there is
// none.
func (s *Store) MostRecent(c Category) (*Handle, error) {
	handles, err := s.List(c)
	if err != nil || len(handles) == 0 {
		return nil, err
	}
	return &handles[0], nil
}

// FindTwoMostRecent returns the newest and the second newest files of
// category c. Both are nil when fewer than two exist.
func (s *Store) FindTwoMostRecent(c Category) (newest, previous *Handle, err error) {
	handles, err := s.List(c)
	if err != nil {
		return nil, nil, err
	}
	if len(handles) < 2 {
		logging.Debug("Found %d %s files, need two to compare", len(handles), c)
		return nil, nil, nil
	}
	return &handles[0], &handles[1], nil
}

// Load reads the snapshot identified by h.
func (s *Store) Load(h *Handle) (Snapshot, error) {
	entries, err := loadFile(h.Path, s.retry)
	if err != nil {
		return Snapshot{}, err
	}
	captured := h.CapturedAt
	if captured.IsZero() {
		captured = h.ModTime
	}
	return Snapshot{Category: h.Category, CapturedAt: captured, Entries: entries}, nil
}

// LoadFile reads a snapshot file into a set.
func LoadFile(path string) (Set, error) {
	return loadFile(path, filesystem.DefaultRetryConfig())
}

func loadFile(path string, config filesystem.RetryConfig) (Set, error) {
	f, err := filesystem.OpenWithRetry(path, config)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn("Failed to close %s: %v", path, closeErr)
		}
	}()

	entries := make(Set)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" {
			continue
		}
		if strings.ContainsRune(line, 0) {
			return nil, &FormatError{Path: path, Line: lineNo, Reason: "line contains a NUL byte"}
		}
		entries.Add(line)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &FormatError{Path: path, Line: lineNo + 1, Reason: "line too long"}
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return entries, nil
}

// Prune applies the retention policy to category c, keeping the keep most
// recent files.
func (s *Store) Prune(c Category, keep int) (retention.Result, error) {
	if !c.Valid() {
		return retention.Result{}, fmt.Errorf("unknown snapshot category %q", c)
	}
	result, err := retention.Prune(s.Dir(c), c.Pattern(), keep)
	if err != nil {
		return result, err
	}
	metrics.RetentionDeletedTotal.WithLabelValues(string(c)).Add(float64(result.Deleted))
	metrics.RetentionFailuresTotal.WithLabelValues(string(c)).Add(float64(result.Failed))
	return result, nil
}

// GetStats counts the files of every category and notes the newest one.
// It implements metrics.StatsProvider.
func (s *Store) GetStats() metrics.Stats {
	stats := metrics.Stats{
		SnapshotFiles: make(map[string]int, len(Categories)),
		Newest:        make(map[string]time.Time, len(Categories)),
	}
	for _, c := range Categories {
		handles, err := s.List(c)
		if err != nil {
			logging.Debug("Stats: listing %s failed: %v", c, err)
			continue
		}
		stats.SnapshotFiles[string(c)] = len(handles)
		if len(handles) > 0 {
			stats.Newest[string(c)] = handles[0].ModTime
		}
	}
	return stats
}
