package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/studyplanner/core/internal/adapters/repository"
	"github.com/studyplanner/core/internal/infrastructure/config"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

const (
	filePrefix = "schedule-"
	fileSuffix = ".json"
	// sorts lexically in time order
	timeLayout = "20060102T150405.000Z"
)

// Service snapshots the schedule document into a directory on a cron schedule
type Service struct {
	store  ports.DocumentStore
	cfg    config.BackupConfig
	logger *logger.Logger
	cron   *cron.Cron
	now    func() time.Time
}

// New creates a backup service and registers its job. The job only runs after Start.
func New(store ports.DocumentStore, cfg config.BackupConfig, log *logger.Logger) (*Service, error) {
	s := &Service{
		store:  store,
		cfg:    cfg,
		logger: log.WithComponent("backup"),
		cron:   cron.New(),
		now:    time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.runJob); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", cfg.Schedule, err)
	}

	return s, nil
}

func (s *Service) Start() {
	s.logger.Infow("Backup scheduler started", "schedule", s.cfg.Schedule, "dir", s.cfg.Dir)
	s.cron.Start()
}

// Stop waits for a running backup to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Service) runJob() {
	path, err := s.Run(context.Background())
	if err != nil {
		s.logger.Errorw("Scheduled backup failed", "error", err)
		return
	}
	s.logger.Infow("Scheduled backup written", "path", path)
}

// Run writes one snapshot and prunes old ones. It returns the snapshot path.
func (s *Service) Run(ctx context.Context) (string, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load schedule: %w", err)
	}

	data, err := repository.EncodeDocument(doc)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	path := filepath.Join(s.cfg.Dir, filePrefix+s.now().UTC().Format(timeLayout)+fileSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if err := s.prune(); err != nil {
		return path, err
	}

	return path, nil
}

// List returns snapshot paths, oldest first.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.cfg.Dir, name)
	}
	return paths, nil
}

func (s *Service) prune() error {
	paths, err := s.List()
	if err != nil {
		return err
	}

	for len(paths) > s.cfg.Keep {
		if err := os.Remove(paths[0]); err != nil {
			return fmt.Errorf("failed to prune backup: %w", err)
		}
		s.logger.Debugw("Pruned backup", "path", paths[0])
		paths = paths[1:]
	}
	return nil
}
