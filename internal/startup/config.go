package startup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"media-manager/internal/filesystem"
	"media-manager/internal/logging"
	"media-manager/internal/mediatypes"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when neither --config nor MEDIA_MANAGER_CONFIG
// names a file.
const DefaultConfigFile = "media_manager_config.json"

// DatabaseFile is the run history database name inside DatabaseDir.
const DatabaseFile = "media_manager.db"

var (
	// ErrNoScanDirectories is returned by RequireScanDirectories when the
	// configuration lists no directory to scan.
	ErrNoScanDirectories = errors.New("no scan directories configured")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Schedule frequencies.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// FileExtensions lists the extensions a scan matches.
type FileExtensions struct {
	Media      []string `json:"media" yaml:"media"`
	Additional []string `json:"additional" yaml:"additional"`
}

// EmailConfig holds the notification settings. Delivery itself is handled
// by a notify.Notifier.
type EmailConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	SenderName    string `json:"sender_name" yaml:"sender_name"`
	SenderEmail   string `json:"sender_email" yaml:"sender_email"`
	ReceiverEmail string `json:"receiver_email" yaml:"receiver_email"`
	Password      string `json:"password" yaml:"password"`
	SMTPServer    string `json:"smtp_server" yaml:"smtp_server"`
	SMTPPort      int    `json:"smtp_port" yaml:"smtp_port"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var placeholderValues = map[string]bool{
	"SENDER_NAME_HERE":    true,
	"SENDER_EMAIL_HERE":   true,
	"RECEIVER_EMAIL_HERE": true,
	"PASSWORD_HERE":       true,
	"smtp.server.com":     true,
}

// IsValid reports whether every field needed to send mail is present,
// well-formed and not a placeholder.
func (e EmailConfig) IsValid() bool {
	required := []string{e.SenderEmail, e.ReceiverEmail, e.Password, e.SMTPServer}
	for _, v := range required {
		if v == "" || placeholderValues[v] {
			return false
		}
	}
	if !emailPattern.MatchString(e.SenderEmail) || !emailPattern.MatchString(e.ReceiverEmail) {
		return false
	}
	return e.SMTPPort >= 1 && e.SMTPPort <= 65535
}

// TaskSchedule is the automation entry for one operation.
type TaskSchedule struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Time      string `json:"time" yaml:"time"`
	Frequency string `json:"frequency" yaml:"frequency"`
}

// Clock parses Time as "HH:MM".
func (s TaskSchedule) Clock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("time %q is not HH:MM", s.Time)
	}
	return t.Hour(), t.Minute(), nil
}

// Automation configures the in-process scheduler. Task keys use underscores,
// e.g. "generate_media_list".
type Automation struct {
	Enabled bool                    `json:"enabled" yaml:"enabled"`
	Tasks   map[string]TaskSchedule `json:"tasks" yaml:"tasks"`
}

// Config holds all application configuration. It is built once by
// LoadConfig and treated as read-only afterwards.
type Config struct {
	ScanDirectories    []string       `json:"scan_directories" yaml:"scan_directories"`
	OutputDirectory    string         `json:"output_directory" yaml:"output_directory"`
	FileExtensions     FileExtensions `json:"file_extensions" yaml:"file_extensions"`
	Email              EmailConfig    `json:"email" yaml:"email"`
	FileRetentionCount int            `json:"file_retention_count" yaml:"file_retention_count"`
	Automation         Automation     `json:"automation" yaml:"automation"`

	// Runtime settings, from the environment only.
	ConfigFile      string `json:"-" yaml:"-"`
	Port            string `json:"-" yaml:"-"`
	DatabaseDir     string `json:"-" yaml:"-"`
	DatabasePath    string `json:"-" yaml:"-"`
	MetricsEnabled  bool   `json:"-" yaml:"-"`
	LogHealthChecks bool   `json:"-" yaml:"-"`
}

var defaultTaskTimes = map[string]string{
	"generate_media_list":     "05:00",
	"check_missing_media":     "05:30",
	"manage_file_retention":   "06:00",
	"check_windows_filenames": "06:30",
	"complete_check":          "05:00",
}

// DefaultConfig returns the configuration used for absent keys.
func DefaultConfig() *Config {
	tasks := make(map[string]TaskSchedule, len(defaultTaskTimes))
	for id, at := range defaultTaskTimes {
		tasks[id] = TaskSchedule{Time: at, Frequency: FrequencyDaily}
	}

	return &Config{
		ScanDirectories: []string{},
		OutputDirectory: "lists",
		FileExtensions: FileExtensions{
			Media:      append([]string(nil), mediatypes.DefaultExtensions...),
			Additional: []string{},
		},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		FileRetentionCount: 100,
		Automation:         Automation{Tasks: tasks},
		Port:               "8080",
		MetricsEnabled:     true,
	}
}

// LoadConfig reads the configuration file at path, fills absent keys with
// defaults, applies environment overrides and validates the result. An
// empty path falls back to MEDIA_MANAGER_CONFIG and then DefaultConfigFile.
// A missing file is not an error; the defaults are used.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = getEnv("MEDIA_MANAGER_CONFIG", DefaultConfigFile)
	}

	cfg := DefaultConfig()
	cfg.ConfigFile = path

	if err := decodeFile(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logging.Info("Config file %s not found, using defaults", path)
	}

	fillTaskDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	logging.Debug("Loaded configuration from %s", path)
	return nil
}

func fillTaskDefaults(cfg *Config) {
	if cfg.Automation.Tasks == nil {
		cfg.Automation.Tasks = make(map[string]TaskSchedule)
	}
	for id, at := range defaultTaskTimes {
		task := cfg.Automation.Tasks[id]
		if task.Time == "" {
			task.Time = at
		}
		if task.Frequency == "" {
			task.Frequency = FrequencyDaily
		}
		cfg.Automation.Tasks[id] = task
	}
	if cfg.ScanDirectories == nil {
		cfg.ScanDirectories = []string{}
	}
}

func applyEnv(cfg *Config) {
	cfg.OutputDirectory = getEnv("OUTPUT_DIR", cfg.OutputDirectory)
	if dirs := os.Getenv("SCAN_DIRS"); dirs != "" {
		cfg.ScanDirectories = filepath.SplitList(dirs)
	}
	cfg.FileRetentionCount = getEnvInt("RETENTION_COUNT", cfg.FileRetentionCount)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseDir = getEnv("DATABASE_DIR", cfg.DatabaseDir)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", cfg.LogHealthChecks)
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.OutputDirectory) == "" {
		errs = append(errs, errors.New("output_directory is empty"))
	}
	if c.FileRetentionCount < 1 {
		errs = append(errs, fmt.Errorf("file_retention_count must be at least 1, got %d", c.FileRetentionCount))
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("port %q is not a valid TCP port", c.Port))
	}
	if len(c.Extensions()) == 0 {
		errs = append(errs, errors.New("file_extensions lists no usable extension"))
	}

	for id, task := range c.Automation.Tasks {
		if _, _, err := task.Clock(); err != nil {
			errs = append(errs, fmt.Errorf("automation task %s: %w", id, err))
		}
		if task.Frequency != FrequencyDaily && task.Frequency != FrequencyWeekly {
			errs = append(errs, fmt.Errorf("automation task %s: frequency %q is not daily or weekly", id, task.Frequency))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) resolvePaths() error {
	out, err := filepath.Abs(c.OutputDirectory)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	c.OutputDirectory = out

	if c.DatabaseDir == "" {
		c.DatabaseDir = out
	}
	dbDir, err := filepath.Abs(c.DatabaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	c.DatabaseDir = dbDir
	c.DatabasePath = filepath.Join(dbDir, DatabaseFile)
	return nil
}

// Extensions returns the union of the media and additional extensions.
func (c *Config) Extensions() mediatypes.ExtensionSet {
	all := make([]string, 0, len(c.FileExtensions.Media)+len(c.FileExtensions.Additional))
	all = append(all, c.FileExtensions.Media...)
	all = append(all, c.FileExtensions.Additional...)
	return mediatypes.NewExtensionSet(all...)
}

// Volumes maps the scan, output and database directories to the volume
// labels used by filesystem metrics. A database kept in the output
// directory is labelled "output".
func (c *Config) Volumes() *filesystem.VolumeResolver {
	paths := make(map[string]string, len(c.ScanDirectories)+2)
	for _, dir := range c.ScanDirectories {
		paths[dir] = "media"
	}
	if c.DatabaseDir != "" {
		paths[c.DatabaseDir] = "database"
	}
	paths[c.OutputDirectory] = "output"
	return filesystem.NewVolumeResolverFromPaths(paths)
}

// RequireScanDirectories returns ErrNoScanDirectories when nothing is
// configured to scan.
func (c *Config) RequireScanDirectories() error {
	if len(c.ScanDirectories) == 0 {
		return ErrNoScanDirectories
	}
	return nil
}

// NotificationsEnabled reports whether email is switched on and complete.
func (c *Config) NotificationsEnabled() bool {
	return c.Email.Enabled && c.Email.IsValid()
}

// LogConfig prints the effective configuration. Secrets are not printed.
func LogConfig(c *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Config file:         %s", c.ConfigFile)
	logging.Info("  Scan directories:    %d", len(c.ScanDirectories))
	for _, dir := range c.ScanDirectories {
		logging.Info("    - %s", dir)
	}
	logging.Info("  Output directory:    %s", c.OutputDirectory)
	logging.Info("  Extensions:          %s", strings.Join(c.Extensions().Sorted(), " "))
	for _, ext := range c.Extensions().Sorted() {
		if !mediatypes.IsVideo(ext) {
			logging.Debug("    %s is not a known video container", ext)
		}
	}
	logging.Info("  Retention count:     %d", c.FileRetentionCount)
	logging.Info("  Email notifications: %s", enabledString(c.NotificationsEnabled()))
	logging.Info("  Automation:          %s", enabledString(c.Automation.Enabled))
	logging.Info("  DATABASE_DIR:        %s", c.DatabaseDir)
	logging.Info("  PORT:                %s", c.Port)
	logging.Info("  METRICS_ENABLED:     %v", c.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", c.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	if c.Email.Enabled && !c.Email.IsValid() {
		logging.Warn("  Email is enabled but the email settings are incomplete; notifications are off")
	}
}
