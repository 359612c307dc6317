package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

// FileStore keeps the schedule document in a single JSON file.
type FileStore struct {
	path     string
	mu       sync.Mutex
	logger   *logger.Logger
	observer ports.StoreObserver
}

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string, appLogger *logger.Logger, observer ports.StoreObserver) *FileStore {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &FileStore{
		path:     path,
		logger:   appLogger.WithComponent("file_store"),
		observer: observer,
	}
}

// Path returns the data file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*entities.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *FileStore) Save(ctx context.Context, doc *entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, doc)
}

func (s *FileStore) Update(ctx context.Context, fn func(doc *entities.Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}

	return s.save(ctx, doc)
}

func (s *FileStore) Seed(ctx context.Context, subjects map[string]entities.Subject) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat schedule file: %w", err)
	}

	doc := entities.NewDocument()
	for name, subject := range subjects {
		doc.Subjects[name] = subject
	}

	if err := s.save(ctx, doc); err != nil {
		return false, err
	}

	s.logger.Infow("Created schedule file", "path", s.path, "subjects", len(subjects))
	return true, nil
}

// Ping checks that the data file can be read
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load(ctx context.Context) (*entities.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.observer.ObserveOperation("load", nil)
		return entities.NewDocument(), nil
	}
	if err != nil {
		err = fmt.Errorf("read schedule file: %w", err)
		s.observer.ObserveOperation("load", err)
		s.logger.LogStoreOperation("load", elapsedMs(start), err)
		return nil, err
	}

	s.observer.ObserveOperation("load", nil)
	s.logger.LogStoreOperation("load", elapsedMs(start), nil)

	doc, err := DecodeDocument(data)
	if err != nil {
		return recoverDocument(s.logger, s.observer, s.path, data, err, s.keepCorrupt)
	}

	return doc, nil
}

// keepCorrupt copies an unreadable data file next to the original.
func (s *FileStore) keepCorrupt(data []byte) (string, error) {
	path := s.path + CorruptSuffix
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// save replaces the data file through a temporary file in the same directory.
func (s *FileStore) save(ctx context.Context, doc *entities.Document) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		s.observer.ObserveOperation("save", err)
		s.logger.LogStoreOperation("save", elapsedMs(start), err)
	}()

	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create schedule dir: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace schedule file: %w", err)
	}

	return nil
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1000000
}
