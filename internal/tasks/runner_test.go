package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"media-manager/internal/database"
	"media-manager/internal/notify"
	"media-manager/internal/snapshot"
	"media-manager/internal/startup"
	"media-manager/internal/workers"
)

type testEnv struct {
	cfg    *startup.Config
	media  string
	out    string
	store  *snapshot.Store
	db     *database.Database
	runner *Runner
}

func newTestEnv(t *testing.T, notifier notify.Notifier, pool *workers.Pool) *testEnv {
	t.Helper()

	media := filepath.Join(t.TempDir(), "media")
	if err := os.MkdirAll(media, 0o755); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	cfg := startup.DefaultConfig()
	cfg.ScanDirectories = []string{media}
	cfg.OutputDirectory = out
	cfg.FileRetentionCount = 2

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := snapshot.NewStore(out)
	return &testEnv{
		cfg:    cfg,
		media:  media,
		out:    out,
		store:  store,
		db:     db,
		runner: NewRunner(cfg, store, db, notifier, pool),
	}
}

func (e *testEnv) touch(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(e.media, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeList writes a media list file with the given age.
func (e *testEnv) writeList(t *testing.T, c snapshot.Category, captured time.Time, lines ...string) string {
	t.Helper()
	dir := filepath.Join(e.out, string(c))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, c.FileName(captured))
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, captured, captured); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunUnknownOperation(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	_, err := env.runner.Run(context.Background(), "defragment", database.TriggerManual)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Run() error = %v, want ErrUnknownOperation", err)
	}
}

func TestRunAlreadyRunning(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	if !env.runner.tryStart(OpGenerateMediaList) {
		t.Fatal("tryStart() = false on idle runner")
	}

	tests := []struct {
		name string
		op   string
	}{
		{name: "same operation", op: OpGenerateMediaList},
		{name: "complete check needs every operation", op: OpCompleteCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.runner.Run(context.Background(), tt.op, database.TriggerManual)
			if !errors.Is(err, ErrAlreadyRunning) {
				t.Errorf("Run(%s) error = %v, want ErrAlreadyRunning", tt.op, err)
			}
		})
	}

	if got := env.runner.Running(); len(got) != 1 || got[0] != OpGenerateMediaList {
		t.Errorf("Running() = %v", got)
	}

	env.runner.finish(OpGenerateMediaList)
	if env.runner.IsRunning(OpGenerateMediaList) {
		t.Error("IsRunning() = true after finish")
	}
}

func TestCompleteCheckBlocksOthers(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	if !env.runner.tryStart(OpCompleteCheck) {
		t.Fatal("tryStart(complete-check) = false on idle runner")
	}
	for _, op := range Operations {
		if !env.runner.IsRunning(op) {
			t.Errorf("IsRunning(%s) = false during complete check", op)
		}
	}
	env.runner.finish(OpCompleteCheck)
	if got := env.runner.Running(); len(got) != 0 {
		t.Errorf("Running() = %v after finish, want none", got)
	}
}

func TestGenerateMediaList(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.touch(t, "Movies/a.mp4")
	env.touch(t, "Movies/b.MKV")
	env.touch(t, "Movies/notes.txt")
	env.touch(t, ".hidden/c.mp4")

	result, err := env.runner.Run(context.Background(), OpGenerateMediaList, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Message)
	}
	if result.Counts["files"] != 2 {
		t.Errorf("files = %d, want 2", result.Counts["files"])
	}
	if result.Counts["hidden_pruned"] != 1 {
		t.Errorf("hidden_pruned = %d, want 1", result.Counts["hidden_pruned"])
	}
	if len(result.Files) != 1 {
		t.Fatalf("Files = %v, want one media list", result.Files)
	}

	entries, err := snapshot.LoadFile(result.Files[0])
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !entries.Has(filepath.Join(env.media, "Movies", "a.mp4")) {
		t.Errorf("media list %v is missing a.mp4", entries.Sorted())
	}

	last, err := env.db.LastRun(context.Background(), OpGenerateMediaList)
	if err != nil || last == nil {
		t.Fatalf("LastRun() = %v, %v", last, err)
	}
	if !last.Success || last.Trigger != database.TriggerManual {
		t.Errorf("recorded run = %+v", last)
	}
}

func TestGenerateMediaListNoDirectories(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.cfg.ScanDirectories = nil

	result, err := env.runner.Run(context.Background(), OpGenerateMediaList, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Success || !errors.Is(result.Err, startup.ErrNoScanDirectories) {
		t.Errorf("result = %+v, want ErrNoScanDirectories failure", result)
	}
}

func TestGenerateMediaListRootErrors(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.touch(t, "a.mp4")
	missing := filepath.Join(t.TempDir(), "gone")

	t.Run("one root missing", func(t *testing.T) {
		env.cfg.ScanDirectories = []string{env.media, missing}
		result, err := env.runner.Run(context.Background(), OpGenerateMediaList, database.TriggerManual)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Success {
			t.Error("Success = true with an unreadable root")
		}
		if len(result.Files) != 1 || result.Counts["files"] != 1 {
			t.Errorf("partial list not written: files=%v counts=%v", result.Files, result.Counts)
		}
	})

	t.Run("every root missing", func(t *testing.T) {
		env.cfg.ScanDirectories = []string{missing}
		result, err := env.runner.Run(context.Background(), OpGenerateMediaList, database.TriggerManual)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Success || len(result.Files) != 0 {
			t.Errorf("result = %+v, want failure without a list", result)
		}
	})
}

func TestCheckMissingMedia(t *testing.T) {
	notifier := &notify.LogNotifier{To: "owner@example.com"}
	env := newTestEnv(t, notifier, nil)

	base := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	env.writeList(t, snapshot.MediaLists, base, "/m/X.mp4", "/m/Y.mp4")
	env.writeList(t, snapshot.MediaLists, base.Add(time.Hour), "/m/Y.mp4", "/m/Z.mp4")

	result, err := env.runner.Run(context.Background(), OpCheckMissingMedia, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Message)
	}
	if result.Counts["missing"] != 1 {
		t.Errorf("missing = %d, want 1", result.Counts["missing"])
	}
	if len(result.Files) != 1 {
		t.Fatalf("Files = %v, want the missing report", result.Files)
	}

	data, err := os.ReadFile(result.Files[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "/m/X.mp4\n" {
		t.Errorf("report = %q, want %q", data, "/m/X.mp4\n")
	}

	if len(notifier.Sent) != 1 {
		t.Fatalf("notifications sent = %d, want 1", len(notifier.Sent))
	}
	if !strings.Contains(notifier.Sent[0].Body, "/m/X.mp4") {
		t.Errorf("notification body = %q", notifier.Sent[0].Body)
	}

	count, err := env.db.GetMetadata(context.Background(), database.MetadataLastMissingCount)
	if err != nil || count != "1" {
		t.Errorf("last missing count = %q, %v", count, err)
	}
	notified, err := env.db.GetTime(context.Background(), database.MetadataLastNotification)
	if err != nil || notified.IsZero() {
		t.Errorf("last notification = %v, %v", notified, err)
	}
}

func TestCheckMissingMediaNothingMissing(t *testing.T) {
	notifier := &notify.LogNotifier{To: "owner@example.com"}
	env := newTestEnv(t, notifier, nil)

	base := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	env.writeList(t, snapshot.MediaLists, base, "/m/Y.mp4")
	env.writeList(t, snapshot.MediaLists, base.Add(time.Hour), "/m/Y.mp4", "/m/Z.mp4")

	result, err := env.runner.Run(context.Background(), OpCheckMissingMedia, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success || result.Counts["missing"] != 0 {
		t.Errorf("result = %+v, want success with nothing missing", result)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %v, want no report", result.Files)
	}
	if len(notifier.Sent) != 0 {
		t.Errorf("notifications sent = %d, want 0", len(notifier.Sent))
	}
}

func TestCheckMissingMediaNeedsTwoLists(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.writeList(t, snapshot.MediaLists, time.Now().Add(-time.Hour), "/m/Y.mp4")

	result, err := env.runner.Run(context.Background(), OpCheckMissingMedia, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Success || !errors.Is(result.Err, ErrNotEnoughSnapshots) {
		t.Errorf("result = %+v, want ErrNotEnoughSnapshots", result)
	}
}

func TestManageFileRetention(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	base := time.Now().Add(-24 * time.Hour).Truncate(time.Second)
	var lists []string
	for i := 0; i < 4; i++ {
		lists = append(lists, env.writeList(t, snapshot.MediaLists, base.Add(time.Duration(i)*time.Minute), "/m/a.mp4"))
	}
	env.writeList(t, snapshot.MissingMedia, base, "/m/a.mp4")

	result, err := env.runner.Run(context.Background(), OpManageFileRetention, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Message)
	}
	if result.Counts["deleted"] != 2 || result.Counts["kept"] != 3 {
		t.Errorf("counts = %v, want deleted 2 kept 3", result.Counts)
	}

	for i, path := range lists {
		_, err := os.Stat(path)
		exists := err == nil
		if want := i >= 2; exists != want {
			t.Errorf("list %d exists = %v, want %v", i, exists, want)
		}
	}
}

func TestCheckWindowsFilenames(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.writeList(t, snapshot.MediaLists, time.Now().Add(-time.Hour),
		"/m/ok.mp4", "/m/a:b?c.mkv", "/m/CON.mp4")

	result, err := env.runner.Run(context.Background(), OpCheckWindowsFilenames, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Message)
	}
	if result.Counts["checked"] != 3 || result.Counts["issues"] != 2 {
		t.Errorf("counts = %v, want checked 3 issues 2", result.Counts)
	}
	if len(result.Files) != 1 {
		t.Fatalf("Files = %v, want one report", result.Files)
	}
	data, err := os.ReadFile(result.Files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Found 2 files with Windows naming issues") {
		t.Errorf("report does not summarize issues:\n%s", data)
	}
	if filepath.Base(filepath.Dir(result.Files[0])) != string(snapshot.FilenameIssues) {
		t.Errorf("report saved to %s", result.Files[0])
	}
}

func TestCheckWindowsFilenamesClean(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.writeList(t, snapshot.MediaLists, time.Now().Add(-time.Hour), "/m/ok.mp4")

	result, err := env.runner.Run(context.Background(), OpCheckWindowsFilenames, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success || len(result.Files) != 0 {
		t.Errorf("result = %+v, want success without a report", result)
	}
}

func TestCheckWindowsFilenamesNoList(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	result, err := env.runner.Run(context.Background(), OpCheckWindowsFilenames, database.TriggerManual)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Success || !errors.Is(result.Err, ErrNoMediaList) {
		t.Errorf("result = %+v, want ErrNoMediaList", result)
	}
}

func TestFixProposals(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.writeList(t, snapshot.MediaLists, time.Now().Add(-time.Hour), "/m/ok.mp4", "/m/movie .mp4")

	h, proposals, err := env.runner.FixProposals()
	if err != nil {
		t.Fatalf("FixProposals() error = %v", err)
	}
	if h == nil || h.Entries != 2 {
		t.Errorf("handle = %+v, want 2 entries", h)
	}
	if len(proposals) != 1 || proposals[0].Suggested != "movie.mp4" {
		t.Errorf("proposals = %+v, want movie.mp4", proposals)
	}
}

func TestCompleteCheck(t *testing.T) {
	notifier := &notify.LogNotifier{To: "owner@example.com"}
	pool := workers.NewPool(2, 4)
	defer pool.Close()
	env := newTestEnv(t, notifier, pool)

	y := env.touch(t, "Y.mp4")
	x := filepath.Join(env.media, "X.mp4")
	env.writeList(t, snapshot.MediaLists, time.Now().Add(-time.Hour), x, y)

	result, err := env.runner.Run(context.Background(), OpCompleteCheck, database.TriggerAPI)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Message)
	}
	if len(result.Steps) != 4 {
		t.Fatalf("Steps = %d, want 4", len(result.Steps))
	}
	for i, op := range Operations[:4] {
		if result.Steps[i].Operation != op {
			t.Errorf("step %d = %s, want %s", i, result.Steps[i].Operation, op)
		}
	}
	if missing := result.Steps[1].Counts["missing"]; missing != 1 {
		t.Errorf("missing = %d, want 1", missing)
	}
	if len(notifier.Sent) != 1 || !strings.Contains(notifier.Sent[0].Body, x) {
		t.Errorf("notifications = %+v, want one naming %s", notifier.Sent, x)
	}

	runs, err := env.db.RecentRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 5 {
		t.Errorf("recorded runs = %d, want 5", len(runs))
	}
	if env.runner.IsRunning(OpCompleteCheck) {
		t.Error("complete-check still marked running")
	}
}

func TestRunCanceledBeforeStart(t *testing.T) {
	pool := workers.NewPool(1, 1)
	defer pool.Close()
	env := newTestEnv(t, nil, pool)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := env.runner.Run(ctx, OpManageFileRetention, database.TriggerManual); err == nil {
		t.Fatal("Run() with canceled context succeeded")
	}

	deadline := time.Now().Add(2 * time.Second)
	for env.runner.IsRunning(OpManageFileRetention) {
		if time.Now().After(deadline) {
			t.Fatal("operation still marked running after abandoned submit")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDescribe(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	infos := env.runner.Describe()
	if len(infos) != len(Operations) {
		t.Fatalf("Describe() returned %d operations, want %d", len(infos), len(Operations))
	}
	for _, info := range infos {
		if info.Description == "" {
			t.Errorf("%s has no description", info.Name)
		}
		if info.Running {
			t.Errorf("%s reported running on idle runner", info.Name)
		}
	}
}
