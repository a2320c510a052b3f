package startup

import (
	"fmt"
	"os"

	"media-manager/internal/logging"
)

// PrepareDirectories creates the output and database directories and checks
// that both are writable. Scan directories are only checked; a missing one
// is a warning because scans skip it.
func PrepareDirectories(c *Config) error {
	section("Directory setup")

	for _, dir := range []struct{ path, name string }{
		{c.OutputDirectory, "output"},
		{c.DatabaseDir, "database"},
	} {
		if err := ensureWritableDir(dir.path); err != nil {
			return fmt.Errorf("%s directory %s: %w", dir.name, dir.path, err)
		}
		logging.Info("  [OK] %s directory is writable: %s", dir.name, dir.path)
	}

	for _, dir := range c.ScanDirectories {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logging.Warn("  Scan directory %s is not accessible; scans will skip it", dir)
		}
	}
	return nil
}

func ensureWritableDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	probe, err := os.CreateTemp(path, ".write-test-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		logging.Warn("failed to close write test file %s: %v", name, err)
	}
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	return nil
}
