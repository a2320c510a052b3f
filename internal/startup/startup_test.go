package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"Returns default when env var not set", "TEST_MM_UNSET_VAR", "default", "", "default"},
		{"Returns env value when set", "TEST_MM_SET_VAR", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"Returns default when unset", "", true, true},
		{"Parses true", "true", false, true},
		{"Parses 0", "0", true, false},
		{"Parses T", "T", false, true},
		{"Invalid value returns default", "maybe", true, true},
		{"Invalid value returns default false", "nope", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_MM_BOOL", tt.envValue)
			if got := getEnvBool("TEST_MM_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		envValue string
		want     int
	}{
		{"", 100},
		{"25", 25},
		{"-3", -3},
		{"ten", 100},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("TEST_MM_INT", tt.envValue)
			if got := getEnvInt("TEST_MM_INT", 100); got != tt.want {
				t.Errorf("getEnvInt(%q) = %d, want %d", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/tasks":                "api/tasks",
		"/api/tasks/{name}":         "api/tasks",
		"/api/snapshots/{category}": "api/snapshots",
		"/healthz":                  "healthz",
		"/":                         "",
	}
	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	router.HandleFunc("/api/tasks", noop).Methods("GET").Name("listTasks")
	router.HandleFunc("/api/tasks/{name}", noop).Methods("POST")
	router.Handle("/metrics", http.HandlerFunc(noop))

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("GetRoutes() returned %d routes, want 3", len(routes))
	}
	if routes[0].Name != "listTasks" || routes[0].Method != "GET" {
		t.Errorf("first route = %+v", routes[0])
	}
	if routes[2].Method != "*" {
		t.Errorf("route without methods = %+v, want method *", routes[2])
	}
}

func TestPrepareDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDirectory = filepath.Join(root, "out")
	cfg.DatabaseDir = filepath.Join(root, "db")
	cfg.ScanDirectories = []string{filepath.Join(root, "absent")}

	if err := PrepareDirectories(cfg); err != nil {
		t.Fatalf("PrepareDirectories() error = %v", err)
	}
	for _, dir := range []string{cfg.OutputDirectory, cfg.DatabaseDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
}

func TestPrepareDirectoriesRejectsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := DefaultConfig()
	cfg.OutputDirectory = file
	cfg.DatabaseDir = root

	if err := PrepareDirectories(cfg); err == nil {
		t.Error("PrepareDirectories() with a file as output directory returned nil error")
	}
}

func TestGetRoutesSkipsSubrouterPrefix(t *testing.T) {
	router := mux.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/runs", noop).Methods("GET")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 1 || routes[0].Path != "/api/runs" {
		t.Errorf("GetRoutes() = %+v, want only /api/runs", routes)
	}
}

func TestPrepareDirectoriesLeavesNoProbe(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDirectory = root
	cfg.DatabaseDir = root

	if err := PrepareDirectories(cfg); err != nil {
		t.Fatalf("PrepareDirectories() error = %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("directory has %d entries after the write test, want 0", len(entries))
	}
}
