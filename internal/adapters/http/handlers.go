package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyplanner/core/internal/domain/entities"
	"github.com/studyplanner/core/internal/infrastructure/logger"
	"github.com/studyplanner/core/internal/ports"
)

// ScheduleHandler handles calendar page and schedule API requests
type ScheduleHandler struct {
	service ports.ScheduleService
	logger  *logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(service ports.ScheduleService, logger *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		logger:  logger.WithComponent("schedule_handler"),
	}
}

// IndexPage is the data handed to the index template
type IndexPage struct {
	Tasks    []entities.Task
	Classes  []entities.Class
	Subjects map[string]entities.Subject
}

// Index renders the calendar page
func (h *ScheduleHandler) Index(c echo.Context) error {
	doc, err := h.service.Snapshot(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load schedule").SetInternal(err)
	}

	return c.Render(http.StatusOK, "index.html", IndexPage{
		Tasks:    doc.Tasks,
		Classes:  doc.Classes,
		Subjects: doc.Subjects,
	})
}

// AddTask godoc
// @Summary Add a task
// @Description Add a one-time all-day task coloured after its subject
// @Tags schedule
// @Accept x-www-form-urlencoded
// @Produce json
// @Param title formData string true "Task title"
// @Param date formData string true "Task date"
// @Param subject formData string false "Subject name"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} MessageResponse
// @Router /add-task [post]
func (h *ScheduleHandler) AddTask(c echo.Context) error {
	var req ports.AddTaskRequest
	if err := h.bindForm(c, &req, "title", "date"); err != nil {
		return err
	}

	if _, err := h.service.AddTask(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add task").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// AddClass godoc
// @Summary Add a weekly class
// @Tags schedule
// @Accept x-www-form-urlencoded
// @Produce json
// @Param subject formData string true "Subject name"
// @Param day formData string true "Day name, e.g. Monday"
// @Param start_time formData string true "Start time"
// @Param end_time formData string true "End time"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} MessageResponse
// @Router /add-class [post]
func (h *ScheduleHandler) AddClass(c echo.Context) error {
	var req ports.AddClassRequest
	if err := h.bindForm(c, &req, "subject", "day", "start_time", "end_time"); err != nil {
		return err
	}

	if _, err := h.service.AddClass(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add class").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// GetEvents godoc
// @Summary List calendar events
// @Description Tasks followed by classes
// @Tags schedule
// @Produce json
// @Success 200 {array} object
// @Router /get-events [get]
func (h *ScheduleHandler) GetEvents(c echo.Context) error {
	events, err := h.service.Events(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve events").SetInternal(err)
	}

	return c.JSON(http.StatusOK, events)
}

// GetSubjects godoc
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Success 200 {object} map[string]entities.Subject
// @Router /get-subjects [get]
func (h *ScheduleHandler) GetSubjects(c echo.Context) error {
	subjects, err := h.service.Subjects(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve subjects").SetInternal(err)
	}

	return c.JSON(http.StatusOK, subjects)
}

// AddSubject godoc
// @Summary Create or recolour a subject
// @Tags subjects
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Subject name"
// @Param color formData string true "CSS colour"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} MessageResponse
// @Router /add-subject [post]
func (h *ScheduleHandler) AddSubject(c echo.Context) error {
	var req ports.AddSubjectRequest
	if err := h.bindForm(c, &req, "name", "color"); err != nil {
		return err
	}

	if err := h.service.AddSubject(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add subject").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteSubject godoc
// @Summary Delete a subject
// @Description Existing tasks and classes keep their colour
// @Tags subjects
// @Produce json
// @Param name path string true "Subject name"
// @Success 200 {object} SuccessResponse
// @Router /delete-subject/{name} [delete]
func (h *ScheduleHandler) DeleteSubject(c echo.Context) error {
	name := c.Param("name")

	err := h.service.DeleteSubject(c.Request().Context(), name)
	switch {
	case errors.Is(err, entities.ErrSubjectNotFound):
		return c.JSON(http.StatusOK, SuccessResponse{Success: false, Error: "Subject not found"})
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete subject").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Unknown ids succeed without changes
// @Tags schedule
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} SuccessResponse
// @Router /delete-task/{id} [delete]
func (h *ScheduleHandler) DeleteTask(c echo.Context) error {
	id := c.Param("id")

	if err := h.service.DeleteTask(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteClass godoc
// @Summary Delete a class
// @Tags schedule
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} SuccessResponse
// @Router /delete-class/{id} [delete]
func (h *ScheduleHandler) DeleteClass(c echo.Context) error {
	id := c.Param("id")

	if err := h.service.DeleteClass(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete class").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// EditTask godoc
// @Summary Rename a task
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body ports.RenameRequest true "Task id and new title"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} SuccessResponse
// @Router /edit_task [post]
func (h *ScheduleHandler) EditTask(c echo.Context) error {
	return h.rename(c, h.service.RenameTask)
}

// EditClass godoc
// @Summary Rename a class
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body ports.RenameRequest true "Class id and new title"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} SuccessResponse
// @Router /edit_class [post]
func (h *ScheduleHandler) EditClass(c echo.Context) error {
	return h.rename(c, h.service.RenameClass)
}

func (h *ScheduleHandler) rename(c echo.Context, fn func(ctx context.Context, req ports.RenameRequest) error) error {
	var req ports.RenameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := fn(c.Request().Context(), req)
	switch {
	case errors.Is(err, entities.ErrTaskNotFound), errors.Is(err, entities.ErrClassNotFound):
		h.requestLogger(c).Debugw("Rename target not found", "id", req.ID)
		return c.JSON(http.StatusNotFound, SuccessResponse{Success: false})
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to rename entry").SetInternal(err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// bindForm binds form fields into req. Only keys absent from the body are
// rejected; present but empty values are accepted as-is.
func (h *ScheduleHandler) bindForm(c echo.Context, req interface{}, keys ...string) error {
	if _, err := c.FormParams(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	posted := c.Request().PostForm
	for _, key := range keys {
		if _, ok := posted[key]; !ok {
			h.requestLogger(c).Debugw("Rejected form", "path", c.Path(), "missing", key)
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("missing form field %q", key))
		}
	}

	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return nil
}

func (h *ScheduleHandler) requestLogger(c echo.Context) *logger.Logger {
	return h.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
}

// Request/Response types
type SuccessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
