package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"media-manager/internal/database"
	"media-manager/internal/filesystem"
	"media-manager/internal/logging"
	"media-manager/internal/notify"
	"media-manager/internal/snapshot"
	"media-manager/internal/startup"
	"media-manager/internal/tasks"
	"media-manager/internal/validator"

	"golang.org/x/term"
)

// isTerminal reports whether v is a file attached to a terminal. Reports are
// only printed in full for a person at a terminal; scripts get the summary
// line.
var isTerminal = func(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// environment holds what a one-shot command needs.
type environment struct {
	store  *snapshot.Store
	db     *database.Database
	runner *tasks.Runner
}

// openEnvironment builds the runner for a one-shot command. The run history
// is optional here; a database that cannot be opened is logged and skipped.
func openEnvironment(ctx context.Context, cfg *startup.Config) *environment {
	filesystem.SetDefaultVolumeResolver(cfg.Volumes())
	env := &environment{store: snapshot.NewStore(cfg.OutputDirectory)}

	if err := os.MkdirAll(cfg.DatabaseDir, 0o755); err != nil {
		logging.Warn("Run history disabled: %v", err)
	} else if db, err := database.New(ctx, cfg.DatabasePath); err != nil {
		logging.Warn("Run history disabled: %v", err)
	} else {
		env.db = db
	}

	env.runner = tasks.NewRunner(cfg, env.store, env.db, notify.New(cfg.Email), nil)
	return env
}

func (e *environment) Close() {
	if e.db == nil {
		return
	}
	if err := e.db.Close(); err != nil {
		logging.Warn("Failed to close database: %v", err)
	}
}

// runOperation runs one operation and prints its result.
func runOperation(ctx context.Context, cfg *startup.Config, operation string, stdout, stderr io.Writer) int {
	env := openEnvironment(ctx, cfg)
	defer env.Close()

	result, err := env.runner.Run(ctx, operation, database.TriggerManual)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	printResult(stdout, result, isTerminal(stdout))
	if !result.Success {
		return 1
	}
	return 0
}

func printResult(w io.Writer, result *tasks.Result, detailed bool) {
	steps := result.Steps
	if len(steps) == 0 {
		steps = []*tasks.Result{result}
	}

	for _, step := range steps {
		status := "OK"
		if !step.Success {
			status = "FAILED"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", status, step.Operation, step.Message)

		if !detailed {
			continue
		}
		switch step.Operation {
		case tasks.OpCheckMissingMedia, tasks.OpCheckWindowsFilenames:
			for _, path := range step.Files {
				printFile(w, path)
			}
		}
	}

	if len(result.Steps) > 0 {
		fmt.Fprintf(w, "%s: %s\n", result.Operation, result.Message)
	}
}

func printFile(w io.Writer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("Cannot show %s: %v", path, err)
		return
	}
	fmt.Fprintf(w, "\n%s\n%s\n", filepath.Base(path), data)
}

// runFix prints rename proposals for the newest media list and, with
// --apply, renames the files.
func runFix(ctx context.Context, cfg *startup.Config, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("fix", flag.ContinueOnError)
	flags.SetOutput(stderr)
	apply := flags.Bool("apply", false, "rename the files")
	yes := flags.Bool("yes", false, "do not ask for confirmation")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	env := openEnvironment(ctx, cfg)
	defer env.Close()

	h, proposals, err := env.runner.FixProposals()
	if errors.Is(err, tasks.ErrNoMediaList) {
		fmt.Fprintln(stderr, "Error: no media list found; run 'media-manager scan' first")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if len(proposals) == 0 {
		fmt.Fprintf(stdout, "No fixable filenames in %s\n", h.Name)
		return 0
	}

	fmt.Fprintf(stdout, "Proposed renames from %s:\n", h.Name)
	for _, p := range proposals {
		fmt.Fprintf(stdout, "  %s\n    -> %s\n", p.Path, p.Suggested)
	}

	if !*apply {
		fmt.Fprintf(stdout, "\n%d files can be renamed. Run 'media-manager fix --apply' to rename them.\n", len(proposals))
		return 0
	}

	if !*yes {
		if !isTerminal(os.Stdin) {
			fmt.Fprintln(stderr, "Error: --apply needs --yes when not run from a terminal")
			return 1
		}
		if !confirm(os.Stdin, stdout, fmt.Sprintf("Rename %d files? [y/N] ", len(proposals))) {
			fmt.Fprintln(stdout, "Cancelled")
			return 0
		}
	}

	outcome := validator.ApplyFixes(proposals)
	fmt.Fprintf(stdout, "Renamed %d, skipped %d, failed %d\n", outcome.Renamed, outcome.Skipped, outcome.Failed)
	for _, f := range outcome.Failures {
		fmt.Fprintf(stderr, "  %s: %s\n", f.Path, f.Err)
	}
	if outcome.Failed > 0 {
		return 1
	}
	return 0
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
