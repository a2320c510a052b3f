package startup

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"media-manager/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

const rule = "------------------------------------------------------------"

// section starts a titled block of startup output.
func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", strings.ToUpper(title))
	logging.Info(rule)
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// PrintBanner prints the server banner and build information.
func PrintBanner() {
	fmt.Println(rule)
	fmt.Println(`    __  ___         ___         __  ___
   /  |/  /__  ____/ (_)___ _  /  |/  /___ _____  ____ _____ ____  _____
  / /|_/ / _ \/ __  / / __ '/ / /|_/ / __ '/ __ \/ __ '/ __ '/ _ \/ ___/
 / /  / /  __/ /_/ / / /_/ / / /  / / /_/ / / / / /_/ / /_/ /  __/ /
/_/  /_/\___/\__,_/_/\__,_/ /_/  /_/\__,_/_/ /_/\__,_/\__, /\___/_/
                                                     /____/`)
	fmt.Println(rule)

	info := GetBuildInfo()
	logging.Info("  Version:    %s (%s)", info.Version, info.Commit)
	logging.Info("  Build Time: %s", info.BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

// LogSystemInfo logs runtime details.
func LogSystemInfo() {
	section("System information")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d (GOMAXPROCS %d)", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	if !logging.IsDebugEnabled() {
		return
	}
	if wd, err := os.Getwd(); err == nil {
		logging.Debug("  Working dir:     %s", wd)
	}
	if hostname, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:        %s", hostname)
	}
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	section("Database initialization")
	logging.Info("  [OK] Run history database initialized in %v", duration)
}

// LogSchedulerInit logs the automation schedule
func LogSchedulerInit(a Automation) {
	section("Scheduler initialization")

	if !a.Enabled {
		logging.Info("  Automation disabled (set automation.enabled in the config file)")
		return
	}

	ids := make([]string, 0, len(a.Tasks))
	for id := range a.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		task := a.Tasks[id]
		if !task.Enabled {
			logging.Debug("  %-24s disabled", id)
			continue
		}
		logging.Info("  %-24s %s at %s", id, task.Frequency, task.Time)
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening endpoints and how long startup took.
func LogServerStarted(config ServerConfig) {
	section("Server started")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  API:             http://localhost:%s/api/tasks", config.Port)
	logging.Info("  Health:          http://localhost:%s/healthz", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://localhost:%s/metrics", config.Port)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(rule)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	section(fmt.Sprintf("Shutdown initiated (received %s)", signal))
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}
