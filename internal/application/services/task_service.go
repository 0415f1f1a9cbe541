package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tidytasks/api/internal/domain/entities"
	"github.com/tidytasks/api/internal/infrastructure/logger"
	"github.com/tidytasks/api/internal/ports"
)

// TaskService handles task-related operations scoped to a single user.
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// ListTasks retrieves the user's tasks with filtering and sorting applied.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	tasks, total, err := s.taskRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask retrieves one of the user's tasks by ID.
func (s *TaskService) GetTask(ctx context.Context, userID uuid.UUID, id int64) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, userID, id)
}

// CreateTask validates the request and creates a task owned by the user.
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &entities.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    entities.PriorityMedium,
		DueDate:     req.DueDate,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Priority != nil {
		task.Priority = entities.Priority(*req.Priority)
	}

	createdTask, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", createdTask.ID, "user_id", userID)

	return createdTask, nil
}

// UpdateTask applies a partial update to one of the user's tasks and
// refreshes updated_at. A task owned by another user yields the same
// not-found error as a missing one.
func (s *TaskService) UpdateTask(ctx context.Context, userID uuid.UUID, id int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	existing, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.IsCompleted != nil {
		existing.IsCompleted = *req.IsCompleted
	}
	if req.Priority != nil {
		existing.Priority = entities.Priority(*req.Priority)
	}
	if req.DueDate != nil {
		existing.DueDate = req.DueDate
	}
	if req.Category != nil {
		existing.Category = req.Category
	}

	existing.UpdatedAt = time.Now().UTC()

	updatedTask, err := s.taskRepo.Update(ctx, userID, existing)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task updated", "task_id", updatedTask.ID, "user_id", userID)

	return updatedTask, nil
}

// DeleteTask removes one of the user's tasks permanently.
func (s *TaskService) DeleteTask(ctx context.Context, userID uuid.UUID, id int64) error {
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("Task deleted", "task_id", id, "user_id", userID)

	return nil
}

func validateCreate(req ports.CreateTaskRequest) error {
	verr := entities.NewValidationError()

	if msg, ok := entities.ValidateTitle(req.Title); !ok {
		verr.Add("title", msg)
	}
	if req.Description != nil {
		if msg, ok := entities.ValidateDescription(*req.Description); !ok {
			verr.Add("description", msg)
		}
	}
	if req.Category != nil {
		if msg, ok := entities.ValidateCategory(*req.Category); !ok {
			verr.Add("category", msg)
		}
	}
	if req.Priority != nil && !entities.Priority(*req.Priority).IsValid() {
		verr.Add("priority", "priority must be one of low, medium, high")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateUpdate(req ports.UpdateTaskRequest) error {
	verr := entities.NewValidationError()

	if req.Title != nil {
		if msg, ok := entities.ValidateTitle(*req.Title); !ok {
			verr.Add("title", msg)
		}
	}
	if req.Description != nil {
		if msg, ok := entities.ValidateDescription(*req.Description); !ok {
			verr.Add("description", msg)
		}
	}
	if req.Category != nil {
		if msg, ok := entities.ValidateCategory(*req.Category); !ok {
			verr.Add("category", msg)
		}
	}
	if req.Priority != nil && !entities.Priority(*req.Priority).IsValid() {
		verr.Add("priority", "priority must be one of low, medium, high")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
