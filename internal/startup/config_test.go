package startup

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MEDIA_MANAGER_CONFIG", "OUTPUT_DIR", "SCAN_DIRS", "RETENTION_COUNT",
		"PORT", "DATABASE_DIR", "METRICS_ENABLED", "LOG_HEALTH_CHECKS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.FileRetentionCount != 100 {
		t.Errorf("FileRetentionCount = %d, want 100", cfg.FileRetentionCount)
	}
	if want := []string{".avi", ".mkv", ".mp4"}; !reflect.DeepEqual(cfg.Extensions().Sorted(), want) {
		t.Errorf("Extensions() = %v, want %v", cfg.Extensions().Sorted(), want)
	}
	if !filepath.IsAbs(cfg.OutputDirectory) || filepath.Base(cfg.OutputDirectory) != "lists" {
		t.Errorf("OutputDirectory = %q, want an absolute path ending in lists", cfg.OutputDirectory)
	}
	if cfg.DatabasePath != filepath.Join(cfg.OutputDirectory, DatabaseFile) {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.Port != "8080" || !cfg.MetricsEnabled {
		t.Errorf("Port = %q MetricsEnabled = %v", cfg.Port, cfg.MetricsEnabled)
	}
	if task := cfg.Automation.Tasks["check_missing_media"]; task.Time != "05:30" || task.Frequency != FrequencyDaily {
		t.Errorf("check_missing_media schedule = %+v", task)
	}
	if !errors.Is(cfg.RequireScanDirectories(), ErrNoScanDirectories) {
		t.Error("RequireScanDirectories() = nil with no directories configured")
	}
}

func TestLoadConfigJSONMergesDefaults(t *testing.T) {
	clearEnv(t)

	out := t.TempDir()
	path := writeConfig(t, "media_manager_config.json", `{
		"scan_directories": ["/mnt/movies", "/mnt/shows"],
		"output_directory": "`+filepath.ToSlash(out)+`",
		"file_extensions": {"additional": ["M4V"]},
		"file_retention_count": 7,
		"automation": {
			"enabled": true,
			"tasks": {"complete_check": {"enabled": true, "frequency": "weekly"}}
		}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if want := []string{"/mnt/movies", "/mnt/shows"}; !reflect.DeepEqual(cfg.ScanDirectories, want) {
		t.Errorf("ScanDirectories = %v, want %v", cfg.ScanDirectories, want)
	}
	if cfg.FileRetentionCount != 7 {
		t.Errorf("FileRetentionCount = %d, want 7", cfg.FileRetentionCount)
	}
	if !cfg.Extensions().Contains(".m4v") || !cfg.Extensions().Contains(".mp4") {
		t.Errorf("Extensions() = %v, want defaults plus .m4v", cfg.Extensions().Sorted())
	}

	task := cfg.Automation.Tasks["complete_check"]
	if !task.Enabled || task.Frequency != FrequencyWeekly || task.Time != "05:00" {
		t.Errorf("complete_check = %+v, want enabled weekly at the default 05:00", task)
	}
	if _, ok := cfg.Automation.Tasks["generate_media_list"]; !ok {
		t.Error("default task generate_media_list missing after merge")
	}
	if cfg.Email.SMTPServer != "smtp.gmail.com" || cfg.Email.SMTPPort != 587 {
		t.Errorf("Email defaults lost: %+v", cfg.Email)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "config.yaml", `
scan_directories:
  - /srv/media
output_directory: `+filepath.ToSlash(t.TempDir())+`
file_retention_count: 12
email:
  enabled: true
  sender_email: alerts@example.com
  receiver_email: me@example.org
  password: secret
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.ScanDirectories) != 1 || cfg.ScanDirectories[0] != "/srv/media" {
		t.Errorf("ScanDirectories = %v", cfg.ScanDirectories)
	}
	if cfg.FileRetentionCount != 12 {
		t.Errorf("FileRetentionCount = %d, want 12", cfg.FileRetentionCount)
	}
	if !cfg.NotificationsEnabled() {
		t.Errorf("NotificationsEnabled() = false for %+v", cfg.Email)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)

	out := t.TempDir()
	db := t.TempDir()
	t.Setenv("OUTPUT_DIR", out)
	t.Setenv("SCAN_DIRS", "/a"+string(os.PathListSeparator)+"/b")
	t.Setenv("RETENTION_COUNT", "3")
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DIR", db)
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.OutputDirectory != out {
		t.Errorf("OutputDirectory = %q, want %q", cfg.OutputDirectory, out)
	}
	if want := []string{"/a", "/b"}; !reflect.DeepEqual(cfg.ScanDirectories, want) {
		t.Errorf("ScanDirectories = %v, want %v", cfg.ScanDirectories, want)
	}
	if cfg.FileRetentionCount != 3 || cfg.Port != "9000" || cfg.MetricsEnabled {
		t.Errorf("overrides not applied: retention=%d port=%s metrics=%v",
			cfg.FileRetentionCount, cfg.Port, cfg.MetricsEnabled)
	}
	if cfg.DatabasePath != filepath.Join(db, DatabaseFile) {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "custom.json", `{"file_retention_count": 42, "output_directory": "`+filepath.ToSlash(t.TempDir())+`"}`)
	t.Setenv("MEDIA_MANAGER_CONFIG", path)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.FileRetentionCount != 42 {
		t.Errorf("FileRetentionCount = %d, want 42", cfg.FileRetentionCount)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"scan_directories": [`},
		{"zero retention", `{"file_retention_count": 0}`},
		{"negative retention", `{"file_retention_count": -5}`},
		{"no extensions", `{"file_extensions": {"media": [], "additional": [""]}}`},
		{"bad time", `{"automation": {"tasks": {"complete_check": {"time": "25:99"}}}}`},
		{"bad frequency", `{"automation": {"tasks": {"complete_check": {"frequency": "hourly"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeConfig(t, "config.json", tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig(%s) returned nil error", tt.content)
			}
		})
	}
}

func TestValidateWrapsErrInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FileRetentionCount = 0
	cfg.Port = "http"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
	}
}

func TestEmailConfigIsValid(t *testing.T) {
	t.Parallel()

	valid := EmailConfig{
		SenderEmail:   "sender@example.com",
		ReceiverEmail: "receiver@example.org",
		Password:      "app-password",
		SMTPServer:    "smtp.example.com",
		SMTPPort:      587,
	}

	tests := []struct {
		name   string
		mutate func(*EmailConfig)
		want   bool
	}{
		{"complete", func(*EmailConfig) {}, true},
		{"missing password", func(e *EmailConfig) { e.Password = "" }, false},
		{"missing server", func(e *EmailConfig) { e.SMTPServer = "" }, false},
		{"bad sender", func(e *EmailConfig) { e.SenderEmail = "not-an-address" }, false},
		{"bad receiver tld", func(e *EmailConfig) { e.ReceiverEmail = "a@b.c" }, false},
		{"port zero", func(e *EmailConfig) { e.SMTPPort = 0 }, false},
		{"port too high", func(e *EmailConfig) { e.SMTPPort = 70000 }, false},
		{"placeholder password", func(e *EmailConfig) { e.Password = "PASSWORD_HERE" }, false},
		{"placeholder server", func(e *EmailConfig) { e.SMTPServer = "smtp.server.com" }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := valid
			tt.mutate(&e)
			if got := e.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskScheduleClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		time         string
		hour, minute int
		wantErr      bool
	}{
		{"05:30", 5, 30, false},
		{"23:59", 23, 59, false},
		{"00:00", 0, 0, false},
		{"5:30", 5, 30, false},
		{"5:3", 0, 0, true},
		{"24:00", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		h, m, err := TaskSchedule{Time: tt.time}.Clock()
		if (err != nil) != tt.wantErr {
			t.Errorf("Clock(%q) error = %v, wantErr %v", tt.time, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (h != tt.hour || m != tt.minute) {
			t.Errorf("Clock(%q) = %d:%d, want %d:%d", tt.time, h, m, tt.hour, tt.minute)
		}
	}
}

func TestConfigVolumes(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ScanDirectories = []string{"/mnt/movies", "/mnt/tv"}
	cfg.OutputDirectory = "/srv/lists"
	cfg.DatabaseDir = "/var/lib/media-manager"

	vr := cfg.Volumes()
	for path, want := range map[string]string{
		"/mnt/tv/show/e01.mkv":            "media",
		"/srv/lists/media_lists/x.txt":    "output",
		"/var/lib/media-manager/media.db": "database",
		"/tmp/elsewhere":                  "unknown",
	} {
		if got := vr.Resolve(path); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", path, got, want)
		}
	}

	cfg.DatabaseDir = cfg.OutputDirectory
	if got := cfg.Volumes().Resolve("/srv/lists/media_manager.db"); got != "output" {
		t.Errorf("database in the output directory resolves to %q, want output", got)
	}
}
