package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"media-manager/internal/logging"
	"media-manager/internal/startup"
	"media-manager/internal/tasks"
)

// commandAliases maps the short command names to operations. The full
// operation names are accepted as well.
var commandAliases = map[string]string{
	"scan":     tasks.OpGenerateMediaList,
	"diff":     tasks.OpCheckMissingMedia,
	"prune":    tasks.OpManageFileRetention,
	"validate": tasks.OpCheckWindowsFilenames,
	"complete": tasks.OpCompleteCheck,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line in args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("media-manager", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "configuration file (default $MEDIA_MANAGER_CONFIG or "+startup.DefaultConfigFile+")")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	flags.Usage = func() { printUsage(stderr) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if flags.NArg() == 0 {
		printUsage(stderr)
		return 1
	}

	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	command := flags.Arg(0)
	rest := flags.Args()[1:]

	switch command {
	case "version":
		info := startup.GetBuildInfo()
		fmt.Fprintf(stdout, "media-manager %s (commit %s, built %s, %s %s/%s)\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		return 0
	case "help":
		printUsage(stdout)
		return 0
	}

	operation, isTask := resolveOperation(command)
	if !isTask && command != "fix" && command != "serve" {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", sanitizeCommand(command))
		printUsage(stderr)
		return 1
	}

	cfg, err := startup.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if command == "serve" {
		return serve(cfg)
	}

	// Interrupts abandon queued work; a started operation runs to completion.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if command == "fix" {
		return runFix(ctx, cfg, rest, stdout, stderr)
	}
	return runOperation(ctx, cfg, operation, stdout, stderr)
}

// resolveOperation maps a command to an operation name.
func resolveOperation(command string) (string, bool) {
	if op, ok := commandAliases[command]; ok {
		return op, true
	}
	if tasks.Known(command) {
		return command, true
	}
	return "", false
}

// sanitizeCommand keeps only [a-zA-Z0-9_-] so user input can be echoed
// safely.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "<invalid>"
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `media-manager - media library inventory and change tracking

Usage:
  media-manager [--config FILE] [--verbose] <command>

Commands:
  scan       Scan the configured directories and save a media list
             (generate-media-list)
  diff       Report files missing since the previous media list
             (check-missing-media)
  prune      Delete lists and reports beyond the retention count
             (manage-file-retention)
  validate   Check the newest media list for Windows-incompatible names
             (check-windows-filenames)
  complete   Run scan, diff, prune and validate in order
             (complete-check)
  fix        Show rename proposals for Windows-incompatible names
             fix --apply [--yes] renames the files
  serve      Run the HTTP API and the automation scheduler
  version    Print version information

Environment:
  MEDIA_MANAGER_CONFIG  Configuration file
  OUTPUT_DIR            Output directory for lists and reports
  SCAN_DIRS             Scan directories, separated by the OS path list separator
  RETENTION_COUNT       Files kept per category
  DATABASE_DIR          Directory for the run history database
  PORT                  HTTP port for serve (default: 8080)
  METRICS_ENABLED       Serve /metrics (default: true)
  LOG_LEVEL             debug, info, warn or error
`)
}
