package services

import (
	"context"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/ports"
)

// AddTask appends a one-time task coloured after its subject
func (s *ScheduleService) AddTask(ctx context.Context, req ports.AddTaskRequest) (*entities.Task, error) {
	var task entities.Task

	err := s.update(ctx, "add task", func(doc *entities.Document) (bool, error) {
		color := doc.SubjectColor(req.Subject, entities.DefaultTaskColor)
		task = entities.Task{
			ID:              doc.NextID(entities.EntryTypeTask, s.now()),
			Title:           req.Title,
			Start:           req.Date,
			Subject:         req.Subject,
			Type:            entities.EntryTypeTask,
			AllDay:          true,
			BackgroundColor: color,
			BorderColor:     color,
		}
		doc.Tasks = append(doc.Tasks, task)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogScheduleChange("add_task", task.ID, map[string]interface{}{
		"subject": task.Subject,
		"start":   task.Start,
	})

	return &task, nil
}

// DeleteTask removes a task by id. Unknown ids are not an error and leave the
// document untouched.
func (s *ScheduleService) DeleteTask(ctx context.Context, id string) error {
	var removed bool

	err := s.update(ctx, "delete task", func(doc *entities.Document) (bool, error) {
		removed = doc.RemoveTask(id)
		return removed, nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.logger.LogScheduleChange("delete_task", id, nil)
	}
	return nil
}

// RenameTask sets the title of an existing task
func (s *ScheduleService) RenameTask(ctx context.Context, req ports.RenameRequest) error {
	err := s.update(ctx, "rename task", func(doc *entities.Document) (bool, error) {
		task := doc.FindTask(req.ID)
		if task == nil {
			return false, entities.ErrTaskNotFound
		}
		task.Title = req.Name
		return true, nil
	})
	if err != nil {
		return err
	}

	s.logger.LogScheduleChange("rename_task", req.ID, map[string]interface{}{"title": req.Name})
	return nil
}
