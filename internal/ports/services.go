package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tidytasks/api/internal/domain/entities"
)

// TaskService defines the application-level task operations. The
// authenticated principal is an explicit argument on every call.
type TaskService interface {
	ListTasks(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*entities.Task, int, error)
	GetTask(ctx context.Context, userID uuid.UUID, id int64) (*entities.Task, error)
	CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, userID uuid.UUID, id int64, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, userID uuid.UUID, id int64) error
}

// CreateTaskRequest carries the fields for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	IsCompleted bool       `json:"is_completed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
}

// UpdateTaskRequest carries a partial update; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	IsCompleted *bool      `json:"is_completed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
}
