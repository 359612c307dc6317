package ports

import (
	"context"

	"github.com/studyplanner/core/internal/domain/entities"
)

// ScheduleService interface for calendar operations
type ScheduleService interface {
	Snapshot(ctx context.Context) (*entities.Document, error)
	AddTask(ctx context.Context, req AddTaskRequest) (*entities.Task, error)
	AddClass(ctx context.Context, req AddClassRequest) (*entities.Class, error)
	Events(ctx context.Context) ([]any, error)
	Subjects(ctx context.Context) (map[string]entities.Subject, error)
	AddSubject(ctx context.Context, req AddSubjectRequest) error
	DeleteSubject(ctx context.Context, name string) error
	DeleteTask(ctx context.Context, id string) error
	DeleteClass(ctx context.Context, id string) error
	RenameTask(ctx context.Context, req RenameRequest) error
	RenameClass(ctx context.Context, req RenameRequest) error
}

// Task related types. Form structs carry no validate tags: handlers only
// reject absent keys, empty values are stored as given.
type AddTaskRequest struct {
	Title   string `form:"title"`
	Date    string `form:"date"`
	Subject string `form:"subject"`
}

// Class related types
type AddClassRequest struct {
	Subject   string `form:"subject"`
	Day       string `form:"day"`
	StartTime string `form:"start_time"`
	EndTime   string `form:"end_time"`
}

// Subject related types
type AddSubjectRequest struct {
	Name  string `form:"name"`
	Color string `form:"color"`
}

// RenameRequest changes the title of a task or class
type RenameRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}
