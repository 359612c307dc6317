package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/studyplanner/core/internal/adapters/repository"
	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/config"
	"github.com/studyplanner/core/internal/infrastructure/logger"
)

func newTestService(t *testing.T, keep int) (*Service, string) {
	t.Helper()

	dir := t.TempDir()
	store := repository.NewFileStore(filepath.Join(dir, "data.json"), logger.NewNop(), nil)
	if _, err := store.Seed(context.Background(), entities.DefaultSubjects()); err != nil {
		t.Fatal(err)
	}

	backupDir := filepath.Join(dir, "backups")
	svc, err := New(store, config.BackupConfig{Enabled: true, Schedule: "@daily", Dir: backupDir, Keep: keep}, logger.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc, backupDir
}

func TestRunWritesSnapshot(t *testing.T) {
	svc, dir := newTestService(t, 3)
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	path, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if want := filepath.Join(dir, "schedule-20240102T030405.000Z.json"); path != want {
		t.Errorf("path: got %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := repository.DecodeDocument(data)
	if err != nil {
		t.Fatalf("snapshot does not decode: %v", err)
	}
	if doc.Subjects["Math"].Color != "#FF5733" {
		t.Errorf("snapshot subjects: got %+v", doc.Subjects)
	}
}

func TestRunPrunesOldSnapshots(t *testing.T) {
	svc, _ := newTestService(t, 2)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var written []string
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		path, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
		written = append(written, path)
	}

	paths, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("snapshots: got %d, want 2", len(paths))
	}
	if paths[0] != written[2] || paths[1] != written[3] {
		t.Errorf("kept snapshots: got %v, want newest two of %v", paths, written)
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "data.json"), logger.NewNop(), nil)
	if _, err := New(store, config.BackupConfig{Schedule: "every so often", Dir: t.TempDir(), Keep: 1}, logger.NewNop()); err == nil {
		t.Error("New: expected error for bad schedule")
	}
}

func TestListMissingDir(t *testing.T) {
	svc, _ := newTestService(t, 1)

	paths, err := svc.List()
	if err != nil || len(paths) != 0 {
		t.Errorf("List on missing dir: got %v, %v", paths, err)
	}
}

func TestRunJobLogsStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc, backupDir := newTestService(t, 3)
	svc.logger = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	svc.runJob()

	written := logs.FilterMessage("Scheduled backup written").All()
	if len(written) != 1 {
		t.Fatalf("written entries: got %d, want 1", len(written))
	}
	if path, _ := written[0].ContextMap()["path"].(string); filepath.Dir(path) != backupDir {
		t.Errorf("path field: got %q", path)
	}

	// A file where the directory should be makes the next run fail.
	if err := os.RemoveAll(backupDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(backupDir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	svc.runJob()

	failed := logs.FilterMessage("Scheduled backup failed").All()
	if len(failed) != 1 {
		t.Fatalf("failed entries: got %d, want 1", len(failed))
	}
	if failed[0].Level != zapcore.ErrorLevel {
		t.Errorf("level: got %v", failed[0].Level)
	}
	if _, ok := failed[0].ContextMap()["error"]; !ok {
		t.Errorf("missing error field: %v", failed[0].ContextMap())
	}
}
