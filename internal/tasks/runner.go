package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"media-manager/internal/database"
	"media-manager/internal/logging"
	"media-manager/internal/metrics"
	"media-manager/internal/notify"
	"media-manager/internal/scanner"
	"media-manager/internal/snapshot"
	"media-manager/internal/startup"
	"media-manager/internal/workers"
)

// Operation names.
const (
	OpGenerateMediaList     = "generate-media-list"
	OpCheckMissingMedia     = "check-missing-media"
	OpManageFileRetention   = "manage-file-retention"
	OpCheckWindowsFilenames = "check-windows-filenames"
	OpCompleteCheck         = "complete-check"
)

// Operations lists every operation in the order complete-check runs them.
var Operations = []string{
	OpGenerateMediaList,
	OpCheckMissingMedia,
	OpManageFileRetention,
	OpCheckWindowsFilenames,
	OpCompleteCheck,
}

var (
	// ErrUnknownOperation is returned for a name that is not in Operations.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrAlreadyRunning is returned when the operation, or one it would
	// run, is in progress.
	ErrAlreadyRunning = errors.New("operation already running")
)

// maxRunHistory is the number of run records kept by manage-file-retention.
const maxRunHistory = 1000

type operation struct {
	description string
	run         func(ctx context.Context, trigger string) *Result
}

// OperationInfo describes an operation for listings.
type OperationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Running     bool   `json:"running"`
}

// Runner executes operations against one configuration.
type Runner struct {
	cfg      *startup.Config
	store    *snapshot.Store
	scanner  *scanner.Scanner
	db       *database.Database
	notifier notify.Notifier
	pool     *workers.Pool
	now      func() time.Time

	ops map[string]operation

	mu      sync.Mutex
	running map[string]bool
}

// NewRunner creates a Runner. db may be nil, in which case runs are not
// recorded. pool may be nil, in which case operations run on the calling
// goroutine. A nil notifier disables notifications.
func NewRunner(cfg *startup.Config, store *snapshot.Store, db *database.Database, notifier notify.Notifier, pool *workers.Pool) *Runner {
	if notifier == nil {
		notifier = notify.Disabled{}
	}

	r := &Runner{
		cfg:      cfg,
		store:    store,
		scanner:  scanner.New(cfg.Extensions()),
		db:       db,
		notifier: notifier,
		pool:     pool,
		now:      time.Now,
		running:  make(map[string]bool),
	}

	r.ops = map[string]operation{
		OpGenerateMediaList: {
			description: "Scan the configured directories and save a new media list",
			run:         r.single(r.generateMediaList),
		},
		OpCheckMissingMedia: {
			description: "Compare the two newest media lists and report missing files",
			run:         r.single(r.checkMissingMedia),
		},
		OpManageFileRetention: {
			description: "Delete old lists and reports beyond the retention count",
			run:         r.single(r.manageFileRetention),
		},
		OpCheckWindowsFilenames: {
			description: "Check the newest media list for Windows-incompatible names",
			run:         r.single(r.checkWindowsFilenames),
		},
		OpCompleteCheck: {
			description: "Run the four operations above in order",
			run:         r.completeCheck,
		},
	}
	return r
}

func (r *Runner) single(fn func(ctx context.Context) *Result) func(context.Context, string) *Result {
	return func(ctx context.Context, _ string) *Result {
		return fn(ctx)
	}
}

// Describe lists every operation with its current state.
func (r *Runner) Describe() []OperationInfo {
	infos := make([]OperationInfo, 0, len(Operations))
	for _, name := range Operations {
		infos = append(infos, OperationInfo{
			Name:        name,
			Description: r.ops[name].description,
			Running:     r.IsRunning(name),
		})
	}
	return infos
}

// IsRunning reports whether name is in progress.
func (r *Runner) IsRunning(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running[name]
}

// Running returns the operations in progress, sorted.
func (r *Runner) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.running))
	for name, on := range r.running {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is an operation.
func Known(name string) bool {
	for _, op := range Operations {
		if op == name {
			return true
		}
	}
	return false
}

// locksFor returns the operations that must be idle for name to start.
func locksFor(name string) []string {
	if name == OpCompleteCheck {
		return Operations
	}
	return []string{name, OpCompleteCheck}
}

// tryStart marks name as running, returns false if any of its locks is held.
func (r *Runner) tryStart(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, op := range locksFor(name) {
		if r.running[op] {
			return false
		}
	}
	r.running[name] = true
	if name == OpCompleteCheck {
		for _, op := range Operations {
			r.running[op] = true
		}
	}
	return true
}

func (r *Runner) finish(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.running, name)
	if name == OpCompleteCheck {
		for _, op := range Operations {
			delete(r.running, op)
		}
	}
}

// Run executes the named operation and waits for its result. If ctx is done
// before the operation starts it never runs; once started it runs to
// completion even if Run returns early with ctx.Err().
func (r *Runner) Run(ctx context.Context, name, trigger string) (*Result, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	if !r.tryStart(name) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	var started atomic.Bool
	execute := func() (*Result, error) {
		started.Store(true)
		defer r.finish(name)
		return r.execute(context.WithoutCancel(ctx), name, trigger, op), nil
	}

	if r.pool == nil {
		return execute()
	}

	future, err := workers.Submit(ctx, r.pool, execute)
	if err != nil {
		r.finish(name)
		return nil, fmt.Errorf("failed to queue %s: %w", name, err)
	}
	go func() {
		<-future.Done()
		if !started.Load() {
			r.finish(name)
		}
	}()
	return future.Wait(ctx)
}

// execute runs op, records metrics and stores the run.
func (r *Runner) execute(ctx context.Context, name, trigger string, op operation) *Result {
	metrics.TasksRunning.Inc()
	defer metrics.TasksRunning.Dec()

	logging.Info("Starting operation: %s (%s)", name, trigger)
	started := r.now()

	result := op.run(ctx, trigger)
	result.StartedAt = started
	result.FinishedAt = r.now()

	r.record(ctx, trigger, result)
	return result
}

// record stores result in metrics and the run history.
func (r *Runner) record(ctx context.Context, trigger string, result *Result) {
	status := "success"
	if !result.Success {
		status = "error"
	}
	metrics.TaskRunsTotal.WithLabelValues(result.Operation, status).Inc()
	metrics.TaskDuration.WithLabelValues(result.Operation).Observe(result.Duration().Seconds())
	metrics.TaskLastRunTimestamp.WithLabelValues(result.Operation).Set(float64(result.FinishedAt.Unix()))

	if result.Success {
		logging.Info("Finished %s in %v: %s", result.Operation, result.Duration().Round(time.Millisecond), result.Message)
	} else {
		logging.Error("%s failed after %v: %s", result.Operation, result.Duration().Round(time.Millisecond), result.Message)
	}

	if r.db == nil {
		return
	}
	run := &database.Run{
		Operation:  result.Operation,
		Trigger:    trigger,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Success:    result.Success,
		Message:    result.Message,
		Counts:     result.Counts,
		Files:      result.Files,
	}
	if _, err := r.db.RecordRun(ctx, run); err != nil {
		logging.Warn("Failed to record %s run: %v", result.Operation, err)
	}
}

// completeCheck runs the other operations in order. Each step is recorded
// as its own run.
func (r *Runner) completeCheck(ctx context.Context, trigger string) *Result {
	result := newResult(OpCompleteCheck)
	logging.Info("Starting complete check...")

	failed := 0
	for _, name := range Operations {
		if name == OpCompleteCheck {
			continue
		}
		step := r.execute(ctx, name, trigger, r.ops[name])
		result.Steps = append(result.Steps, step)
		result.Files = append(result.Files, step.Files...)
		if !step.Success {
			failed++
		}
	}

	result.Counts["steps"] = len(result.Steps)
	result.Counts["steps_failed"] = failed

	if failed > 0 {
		return result.fail(fmt.Errorf("complete check finished with %d of %d steps failed", failed, len(result.Steps)))
	}
	return result.succeed("Complete check finished: %d steps succeeded", len(result.Steps))
}
