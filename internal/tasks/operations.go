package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"media-manager/internal/database"
	"media-manager/internal/diff"
	"media-manager/internal/logging"
	"media-manager/internal/metrics"
	"media-manager/internal/retention"
	"media-manager/internal/scanner"
	"media-manager/internal/snapshot"
	"media-manager/internal/validator"
)

// ErrNotEnoughSnapshots is returned by the missing-media check when fewer
// than two media lists exist.
var ErrNotEnoughSnapshots = errors.New("need at least 2 media lists to compare")

// ErrNoMediaList is returned when an operation needs a media list and none
// has been generated yet.
var ErrNoMediaList = errors.New("no media list files found")

func (r *Runner) generateMediaList(_ context.Context) *Result {
	result := newResult(OpGenerateMediaList)

	if err := r.cfg.RequireScanDirectories(); err != nil {
		return result.fail(err)
	}

	logging.Info("Scanning directories: %s", strings.Join(r.cfg.ScanDirectories, ", "))
	logging.Info("Looking for extensions: %s", strings.Join(r.cfg.Extensions().Sorted(), ", "))

	scan := r.scanner.Scan(r.cfg.ScanDirectories)
	result.Counts["root_errors"] = len(scan.RootErrors)
	result.Counts["hidden_pruned"] = scan.HiddenPruned
	result.Counts["skipped_dirs"] = scan.SkippedDirs

	// An empty list here would make the next missing check report the
	// whole library.
	if len(scan.RootErrors) == len(r.cfg.ScanDirectories) {
		return result.fail(fmt.Errorf("no scan directory could be read: %w", scan.Err()))
	}

	h, err := r.store.Save(snapshot.MediaLists, scanner.Dedupe(scan.Paths))
	if err != nil {
		return result.fail(fmt.Errorf("failed to save media list: %w", err))
	}
	result.Files = append(result.Files, h.Path)
	result.Counts["files"] = h.Entries

	if err := scan.Err(); err != nil {
		return result.fail(fmt.Errorf("media list %s written without unreadable roots: %w", h.Name, err))
	}
	return result.succeed("Media list generated: %s (%d files)", h.Name, h.Entries)
}

func (r *Runner) checkMissingMedia(ctx context.Context) *Result {
	result := newResult(OpCheckMissingMedia)

	newest, previous, err := r.store.FindTwoMostRecent(snapshot.MediaLists)
	if err != nil {
		return result.fail(fmt.Errorf("failed to list media lists: %w", err))
	}
	if newest == nil || previous == nil {
		return result.fail(ErrNotEnoughSnapshots)
	}
	logging.Info("Comparing %s with %s", previous.Name, newest.Name)

	older, err := r.store.Load(previous)
	if err != nil {
		return result.fail(err)
	}
	newer, err := r.store.Load(newest)
	if err != nil {
		return result.fail(err)
	}

	missing := diff.Missing(older, newer)
	result.Counts["previous"] = older.Entries.Len()
	result.Counts["current"] = newer.Entries.Len()
	result.Counts["missing"] = missing.Len()

	metrics.MissingMediaLast.Set(float64(missing.Len()))
	metrics.MissingMediaTotal.Add(float64(missing.Len()))
	r.setMetadata(ctx, database.MetadataLastMissingCount, strconv.Itoa(missing.Len()))

	if missing.Len() == 0 {
		return result.succeed("No missing media files found")
	}

	sorted := diff.Sorted(missing)
	h, err := r.store.Save(snapshot.MissingMedia, sorted)
	if err != nil {
		return result.fail(fmt.Errorf("failed to save missing media list: %w", err))
	}
	result.Files = append(result.Files, h.Path)
	logging.Info("Found %d missing media files", missing.Len())

	sent, err := r.notifier.Notify(ctx, sorted)
	switch {
	case err != nil:
		logging.Warn("Notification failed: %v", err)
	case sent:
		result.Counts["notified"] = 1
		if r.db != nil {
			if err := r.db.SetTime(ctx, database.MetadataLastNotification, r.now()); err != nil {
				logging.Warn("Failed to store notification time: %v", err)
			}
		}
	default:
		logging.Info("Email notifications disabled, skipping email")
	}

	return result.succeed("Found %d missing media files: %s", missing.Len(), h.Name)
}

func (r *Runner) manageFileRetention(ctx context.Context) *Result {
	result := newResult(OpManageFileRetention)
	keep := r.cfg.FileRetentionCount

	var errs []error
	for _, c := range snapshot.Categories {
		pruned, err := r.store.Prune(c, keep)
		if errors.Is(err, retention.ErrDirectoryMissing) {
			logging.Debug("%s: nothing to prune", c)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
			continue
		}

		logging.Info("%s: Kept %d files, deleted %d files", c, pruned.Kept, pruned.Deleted)
		result.Counts["kept"] += pruned.Kept
		result.Counts["deleted"] += pruned.Deleted
		result.Counts["failed"] += pruned.Failed
		if pruned.Failed > 0 {
			errs = append(errs, fmt.Errorf("%s: %d files could not be deleted", c, pruned.Failed))
		}
	}

	if r.db != nil {
		removed, err := r.db.PruneRuns(ctx, maxRunHistory)
		if err != nil {
			logging.Warn("Failed to prune run history: %v", err)
		}
		result.Counts["runs_pruned"] = int(removed)
	}

	if len(errs) > 0 {
		return result.fail(errors.Join(errs...))
	}
	return result.succeed("File retention complete - total files deleted: %d", result.Counts["deleted"])
}

func (r *Runner) checkWindowsFilenames(_ context.Context) *Result {
	result := newResult(OpCheckWindowsFilenames)

	h, results, err := r.LatestIssues()
	if err != nil {
		return result.fail(err)
	}
	logging.Info("Analyzing: %s", h.Name)

	result.Counts["checked"] = h.Entries
	result.Counts["issues"] = len(results)

	metrics.FilenameIssuesLast.Set(float64(len(results)))
	byKind := results.CountByKind()
	for _, kind := range validator.Kinds {
		metrics.FilenameIssuesByKind.WithLabelValues(string(kind)).Set(float64(byKind[kind]))
	}

	if len(results) == 0 {
		return result.succeed("All filenames are Windows compatible")
	}

	report, err := r.store.SaveReport(snapshot.FilenameIssues, validator.GenerateReport(results))
	if err != nil {
		return result.fail(fmt.Errorf("failed to save filename report: %w", err))
	}
	result.Files = append(result.Files, report.Path)
	return result.succeed("Found %d files with Windows naming issues: %s", len(results), report.Name)
}

// LatestIssues validates the newest media list. h.Entries is set to the
// number of paths checked.
func (r *Runner) LatestIssues() (*snapshot.Handle, validator.Results, error) {
	h, err := r.store.MostRecent(snapshot.MediaLists)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list media lists: %w", err)
	}
	if h == nil {
		return nil, nil, ErrNoMediaList
	}

	snap, err := r.store.Load(h)
	if err != nil {
		return nil, nil, err
	}
	h.Entries = snap.Entries.Len()
	return h, validator.ValidateAll(snap.Entries.Sorted()), nil
}

// FixProposals returns rename proposals for the newest media list.
func (r *Runner) FixProposals() (*snapshot.Handle, []validator.FixProposal, error) {
	h, results, err := r.LatestIssues()
	if err != nil {
		return nil, nil, err
	}
	return h, validator.Proposals(results), nil
}

func (r *Runner) setMetadata(ctx context.Context, key, value string) {
	if r.db == nil {
		return
	}
	if err := r.db.SetMetadata(ctx, key, value); err != nil {
		logging.Warn("Failed to store %s: %v", key, err)
	}
}
