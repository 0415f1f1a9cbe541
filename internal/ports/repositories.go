package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/tidytasks/api/internal/domain/entities"
)

// TaskRepository defines the interface for task data operations.
// Every method takes the owning user's ID explicitly so that an
// unscoped query cannot be expressed through this interface.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*entities.Task, error)
	Update(ctx context.Context, userID uuid.UUID, task *entities.Task) (*entities.Task, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*entities.Task, int, error)
}

// Sort keys accepted by TaskFilter. Anything else falls back to created_at.
const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
)

// Sort orders accepted by TaskFilter. Anything else falls back to desc.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// TaskFilter narrows and orders a task listing. Zero values mean
// "not applied"; SortBy/SortOrder fall back to created_at desc.
type TaskFilter struct {
	Search    string
	Priority  string
	Category  string
	SortBy    string
	SortOrder string
}
