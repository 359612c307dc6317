package services

import (
	"context"
	"fmt"
	"time"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

// ScheduleService handles calendar operations. Every operation reads the
// whole document and writes it back in full when something changed.
type ScheduleService struct {
	store  ports.DocumentStore
	logger *logger.Logger
	now    func() time.Time
}

// Option configures a ScheduleService
type Option func(*ScheduleService)

// WithClock overrides the time source used for entry ids
func WithClock(now func() time.Time) Option {
	return func(s *ScheduleService) {
		s.now = now
	}
}

// NewScheduleService creates a new schedule service
func NewScheduleService(store ports.DocumentStore, logger *logger.Logger, opts ...Option) *ScheduleService {
	s := &ScheduleService{
		store:  store,
		logger: logger.WithComponent("schedule_service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current document
func (s *ScheduleService) Snapshot(ctx context.Context) (*entities.Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}

	return doc, nil
}

// Events returns all tasks followed by all classes
func (s *ScheduleService) Events(ctx context.Context) ([]any, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return doc.Events(), nil
}

// update runs fn through the store and wraps failures
func (s *ScheduleService) update(ctx context.Context, action string, fn func(doc *entities.Document) (bool, error)) error {
	if err := s.store.Update(ctx, fn); err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}
