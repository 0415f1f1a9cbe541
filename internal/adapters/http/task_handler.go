package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tidytasks/api/internal/domain/entities"
	"github.com/tidytasks/api/internal/infrastructure/logger"
	"github.com/tidytasks/api/internal/ports"
	"github.com/tidytasks/api/pkg/filterstate"
)

// TaskListResponse is the payload for task listings.
type TaskListResponse struct {
	Tasks []*entities.Task `json:"tasks"`
	Total int              `json:"total"`
}

// TaskHandler handles task-related requests.
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the authenticated user's tasks, filtered and sorted
// per query parameters.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	fs := filterstate.Parse(c.QueryParams())
	filter := ports.TaskFilter{
		Search:    fs.Search,
		Priority:  fs.Priority,
		Category:  fs.Category,
		SortBy:    fs.SortBy,
		SortOrder: fs.Order,
	}

	tasks, total, err := h.taskService.ListTasks(c.Request().Context(), userID, filter)
	if err != nil {
		return err
	}

	if tasks == nil {
		tasks = []*entities.Task{}
	}

	return c.JSON(http.StatusOK, TaskListResponse{Tasks: tasks, Total: total})
}

// CreateTask creates a task owned by the authenticated user.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask returns one of the authenticated user's tasks.
func (h *TaskHandler) GetTask(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update to one of the user's tasks.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), userID, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes one of the user's tasks permanently.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	userID, err := UserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), userID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func taskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// An unparseable id can't name an existing task; report it the
		// same way as a missing one.
		return 0, entities.ErrTaskNotFound
	}
	return id, nil
}
