package services

import (
	"context"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/ports"
)

// AddClass appends a weekly class. The title is the subject name.
func (s *ScheduleService) AddClass(ctx context.Context, req ports.AddClassRequest) (*entities.Class, error) {
	var class entities.Class

	err := s.update(ctx, "add class", func(doc *entities.Document) (bool, error) {
		color := doc.SubjectColor(req.Subject, entities.DefaultClassColor)
		class = entities.Class{
			ID:              doc.NextID(entities.EntryTypeClass, s.now()),
			Title:           req.Subject,
			DaysOfWeek:      []int{entities.DayNumber(req.Day)},
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			Subject:         req.Subject,
			Day:             req.Day,
			Type:            entities.EntryTypeClass,
			BackgroundColor: color,
			BorderColor:     color,
		}
		doc.Classes = append(doc.Classes, class)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogScheduleChange("add_class", class.ID, map[string]interface{}{
		"subject": class.Subject,
		"day":     class.Day,
	})

	return &class, nil
}

func (s *ScheduleService) DeleteClass(ctx context.Context, id string) error {
	var removed bool

	err := s.update(ctx, "delete class", func(doc *entities.Document) (bool, error) {
		removed = doc.RemoveClass(id)
		return removed, nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.logger.LogScheduleChange("delete_class", id, nil)
	}
	return nil
}

func (s *ScheduleService) RenameClass(ctx context.Context, req ports.RenameRequest) error {
	err := s.update(ctx, "rename class", func(doc *entities.Document) (bool, error) {
		class := doc.FindClass(req.ID)
		if class == nil {
			return false, entities.ErrClassNotFound
		}
		class.Title = req.Name
		return true, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogScheduleChange("rename_class", req.ID, map[string]interface{}{"title": req.Name})
	return nil
}
