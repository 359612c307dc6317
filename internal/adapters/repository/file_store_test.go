package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/logger"
)

var fixedNow = time.Unix(1704067200, 0)

type recordingObserver struct {
	mu         sync.Mutex
	operations map[string]int
	recoveries []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{operations: make(map[string]int)}
}

func (o *recordingObserver) ObserveOperation(operation string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := operation
	if err != nil {
		key += ":error"
	}
	o.operations[key]++
}

func (o *recordingObserver) ObserveRecovery(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recoveries = append(o.recoveries, reason)
}

func newTestFileStore(t *testing.T) (*FileStore, *recordingObserver) {
	t.Helper()
	observer := newRecordingObserver()
	path := filepath.Join(t.TempDir(), "data.json")
	return NewFileStore(path, logger.NewNop(), observer), observer
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, _ := newTestFileStore(t)

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Tasks) != 0 || len(doc.Classes) != 0 || len(doc.Subjects) != 0 {
		t.Errorf("missing file: got %+v, want empty document", doc)
	}
	if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Error("Load created the data file")
	}
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	store, observer := newTestFileStore(t)
	ctx := context.Background()

	doc := entities.NewDocument()
	doc.Tasks = append(doc.Tasks, entities.Task{ID: "task_1", Title: "HW", Type: entities.EntryTypeTask, AllDay: true})
	doc.Subjects["Math"] = entities.Subject{Color: "#FF5733"}

	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].Title != "HW" {
		t.Errorf("tasks: got %+v", loaded.Tasks)
	}
	if loaded.Subjects["Math"].Color != "#FF5733" {
		t.Errorf("subject colour: got %q", loaded.Subjects["Math"].Color)
	}
	if observer.operations["save"] != 1 {
		t.Errorf("save observations: got %d, want 1", observer.operations["save"])
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the data file", len(entries))
	}
}

func TestFileStoreCorruptFileRecovers(t *testing.T) {
	store, observer := newTestFileStore(t)

	if err := os.WriteFile(store.Path(), []byte(`{"tasks": [ not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Tasks) != 0 || len(doc.Classes) != 0 {
		t.Errorf("corrupt file: got %+v, want empty document", doc)
	}
	if len(observer.recoveries) != 1 || observer.recoveries[0] != ReasonInvalidJSON {
		t.Errorf("recoveries: got %v", observer.recoveries)
	}
	if _, err := os.Stat(store.Path() + CorruptSuffix); err != nil {
		t.Errorf("corrupt file not preserved: %v", err)
	}
}

func TestFileStoreSchemaMismatchKeepsOriginal(t *testing.T) {
	store, observer := newTestFileStore(t)
	ctx := context.Background()

	original := []byte(`{"tasks": [{"id": 7, "title": "Essay"}], "subjects": {"Math": {"color": "#FF5733"}}}`)
	if err := os.WriteFile(store.Path(), original, 0o644); err != nil {
		t.Fatal(err)
	}

	err := store.Update(ctx, func(doc *entities.Document) (bool, error) {
		if len(doc.Tasks) != 0 || len(doc.Subjects) != 0 {
			t.Errorf("recovered document: got %+v, want empty", doc)
		}
		doc.Subjects["Art"] = entities.Subject{Color: "#00FF00"}
		return true, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	kept, err := os.ReadFile(store.Path() + CorruptSuffix)
	if err != nil {
		t.Fatalf("preserved copy: %v", err)
	}
	if string(kept) != string(original) {
		t.Errorf("preserved copy: got %s, want %s", kept, original)
	}
	if len(observer.recoveries) != 1 || observer.recoveries[0] != ReasonSchema {
		t.Errorf("recoveries: got %v", observer.recoveries)
	}

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Subjects["Art"].Color != "#00FF00" {
		t.Errorf("saved document: got %+v", doc)
	}
}

func TestFileStoreRefusesRecoveryWhenCopyFails(t *testing.T) {
	store, observer := newTestFileStore(t)

	original := []byte(`{"tasks": [ not json`)
	if err := os.WriteFile(store.Path(), original, 0o644); err != nil {
		t.Fatal(err)
	}
	// A directory in the way makes the copy impossible.
	if err := os.Mkdir(store.Path()+CorruptSuffix, 0o755); err != nil {
		t.Fatal(err)
	}

	err := store.Update(context.Background(), func(doc *entities.Document) (bool, error) {
		t.Error("update ran on an unpreserved document")
		return true, nil
	})
	if err == nil {
		t.Fatal("Update: expected error, got nil")
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Errorf("data file changed: got %s", data)
	}
	if len(observer.recoveries) != 0 {
		t.Errorf("recoveries: got %v, want none", observer.recoveries)
	}
}

func TestFileStoreLegacyList(t *testing.T) {
	store, _ := newTestFileStore(t)

	legacy := `[{"id": "task_1", "title": "Essay", "start": "2024-02-01", "type": "task", "allDay": true}]`
	if err := os.WriteFile(store.Path(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].Title != "Essay" {
		t.Errorf("tasks: got %+v", doc.Tasks)
	}
	if doc.Classes == nil || doc.Subjects == nil {
		t.Error("legacy document missing classes or subjects")
	}
}

func TestFileStoreUpdate(t *testing.T) {
	store, observer := newTestFileStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(doc *entities.Document) (bool, error) {
		doc.Subjects["Art"] = entities.Subject{Color: "#000000"}
		return true, nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	err = store.Update(ctx, func(doc *entities.Document) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("no-op Update failed: %v", err)
	}
	if observer.operations["save"] != 1 {
		t.Errorf("save observations: got %d, want 1", observer.operations["save"])
	}

	boom := errors.New("boom")
	err = store.Update(ctx, func(doc *entities.Document) (bool, error) {
		doc.Subjects = nil
		return true, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error: got %v, want boom", err)
	}

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Subjects["Art"].Color != "#000000" {
		t.Errorf("subjects after failed update: got %+v", doc.Subjects)
	}
}

func TestFileStoreConcurrentUpdates(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, func(doc *entities.Document) (bool, error) {
				doc.Tasks = append(doc.Tasks, entities.Task{ID: doc.NextID("task", fixedNow)})
				return true, nil
			})
		}()
	}
	wg.Wait()

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Tasks) != writers {
		t.Errorf("tasks: got %d, want %d", len(doc.Tasks), writers)
	}
}

func TestFileStoreSeed(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	created, err := store.Seed(ctx, entities.DefaultSubjects())
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if !created {
		t.Fatal("Seed on missing file: got false, want true")
	}

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Subjects["Math"].Color != "#FF5733" {
		t.Errorf("seeded Math colour: got %q", doc.Subjects["Math"].Color)
	}

	created, err = store.Seed(ctx, map[string]entities.Subject{"Art": {Color: "#111111"}})
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if created {
		t.Error("Seed on existing file: got true, want false")
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load with cancelled context: got %v", err)
	}
	if err := store.Save(ctx, entities.NewDocument()); !errors.Is(err, context.Canceled) {
		t.Errorf("Save with cancelled context: got %v", err)
	}
}
