package services

import (
	"context"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/ports"
)

// Subjects returns the subject name to colour mapping
func (s *ScheduleService) Subjects(ctx context.Context) (map[string]entities.Subject, error) {
	doc, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return doc.Subjects, nil
}

// AddSubject creates a subject or replaces its colour. Existing tasks and
// classes keep the colour they were created with.
func (s *ScheduleService) AddSubject(ctx context.Context, req ports.AddSubjectRequest) error {
	err := s.update(ctx, "add subject", func(doc *entities.Document) (bool, error) {
		doc.Subjects[req.Name] = entities.Subject{Color: req.Color}
		return true, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogScheduleChange("add_subject", req.Name, map[string]interface{}{"color": req.Color})
	return nil
}

// DeleteSubject removes a subject. It returns entities.ErrSubjectNotFound when
// no subject has that name.
func (s *ScheduleService) DeleteSubject(ctx context.Context, name string) error {
	err := s.update(ctx, "delete subject", func(doc *entities.Document) (bool, error) {
		if _, ok := doc.Subjects[name]; !ok {
			return false, entities.ErrSubjectNotFound
		}
		delete(doc.Subjects, name)
		return true, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogScheduleChange("delete_subject", name, nil)
	return nil
}
