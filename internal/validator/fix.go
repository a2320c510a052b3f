package validator

import (
	"errors"
	"fmt"
	"io/fs"

	"media-manager/internal/filesystem"
	"media-manager/internal/logging"
	"media-manager/internal/metrics"
)

// FixFailure records a rename that did not happen because of an error.
type FixFailure struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// FixOutcome summarizes ApplyFixes.
type FixOutcome struct {
	Renamed  int          `json:"renamed"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
	Failures []FixFailure `json:"failures,omitempty"`
}

// ApplyFixes renames each proposal's file to its target. A proposal whose
// target already exists, or whose source is gone, is skipped. Errors are
// counted and the remaining proposals are still applied.
func ApplyFixes(proposals []FixProposal) FixOutcome {
	config := filesystem.DefaultRetryConfig()
	var outcome FixOutcome

	for _, p := range proposals {
		if _, err := filesystem.StatWithRetry(p.Path, config); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logging.Warn("Skipping rename of %s: file no longer exists", p.Path)
				outcome.Skipped++
				metrics.FixesAppliedTotal.WithLabelValues("skipped").Inc()
				continue
			}
			outcome.fail(p.Path, err)
			continue
		}

		if _, err := filesystem.StatWithRetry(p.Target, config); err == nil {
			logging.Warn("Skipping rename of %s: %s already exists", p.Path, p.Target)
			outcome.Skipped++
			metrics.FixesAppliedTotal.WithLabelValues("skipped").Inc()
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			outcome.fail(p.Path, err)
			continue
		}

		if err := filesystem.RenameWithRetry(p.Path, p.Target, config); err != nil {
			outcome.fail(p.Path, fmt.Errorf("rename to %s: %w", p.Target, err))
			continue
		}

		logging.Info("Renamed %s -> %s", p.Path, p.Suggested)
		outcome.Renamed++
		metrics.FixesAppliedTotal.WithLabelValues("renamed").Inc()
	}

	return outcome
}

func (o *FixOutcome) fail(path string, err error) {
	logging.Error("Failed to fix %s: %v", path, err)
	o.Failed++
	o.Failures = append(o.Failures, FixFailure{Path: path, Err: err.Error()})
	metrics.FixesAppliedTotal.WithLabelValues("failed").Inc()
}
