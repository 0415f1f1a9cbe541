package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tidytasks/api/internal/domain/entities"
	"github.com/tidytasks/api/internal/ports"
)

// MemoryTaskRepository is an in-memory ports.TaskRepository with the
// same filtering and ordering semantics as the PostgreSQL adapter. It
// backs tests and local experimentation; it is not durable.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]entities.Task
}

// NewMemoryTaskRepository creates an empty in-memory repository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		nextID: 1,
		tasks:  make(map[int64]entities.Task),
	}
}

// Create inserts a task and assigns its ID.
func (r *MemoryTaskRepository) Create(_ context.Context, task *entities.Task) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneTask(*task)
	stored.ID = r.nextID
	r.nextID++
	r.tasks[stored.ID] = stored

	out := cloneTask(stored)
	return &out, nil
}

// GetByID retrieves a task scoped to its owner.
func (r *MemoryTaskRepository) GetByID(_ context.Context, userID uuid.UUID, id int64) (*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, entities.ErrTaskNotFound
	}

	out := cloneTask(task)
	return &out, nil
}

// Update persists the task's mutable fields, scoped to the owner.
func (r *MemoryTaskRepository) Update(_ context.Context, userID uuid.UUID, task *entities.Task) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != userID {
		return nil, entities.ErrTaskNotFound
	}

	stored := cloneTask(*task)
	stored.UserID = existing.UserID
	stored.CreatedAt = existing.CreatedAt
	r.tasks[stored.ID] = stored

	out := cloneTask(stored)
	return &out, nil
}

// Delete removes a task permanently, scoped to the owner.
func (r *MemoryTaskRepository) Delete(_ context.Context, userID uuid.UUID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return entities.ErrTaskNotFound
	}

	delete(r.tasks, id)
	return nil
}

// List returns the user's tasks matching the filter, ordered per the
// filter's sort spec with ties broken by id ascending.
func (r *MemoryTaskRepository) List(_ context.Context, userID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []entities.Task
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		if !taskMatchesFilter(task, filter) {
			continue
		}
		matched = append(matched, cloneTask(task))
	}

	sortTasks(matched, filter)

	out := make([]*entities.Task, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}

	return out, len(out), nil
}

func taskMatchesFilter(task entities.Task, filter ports.TaskFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		inTitle := strings.Contains(strings.ToLower(task.Title), needle)
		inDescription := task.Description != nil &&
			strings.Contains(strings.ToLower(*task.Description), needle)
		if !inTitle && !inDescription {
			return false
		}
	}

	if filter.Priority != "" && string(task.Priority) != filter.Priority {
		return false
	}

	if filter.Category != "" && !task.HasCategory(filter.Category) {
		return false
	}

	return true
}

func sortTasks(tasks []entities.Task, filter ports.TaskFilter) {
	ascending := filter.SortOrder == ports.SortOrderAsc

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		var less, equal bool
		switch filter.SortBy {
		case ports.SortByDueDate:
			// Tasks without a due date sort last in either direction.
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				equal = true
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				less = a.DueDate.Before(*b.DueDate)
				equal = a.DueDate.Equal(*b.DueDate)
			}
		case ports.SortByPriority:
			less = a.Priority.Rank() < b.Priority.Rank()
			equal = a.Priority.Rank() == b.Priority.Rank()
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
			equal = a.CreatedAt.Equal(b.CreatedAt)
		}

		if equal {
			return a.ID < b.ID
		}
		if ascending {
			return less
		}
		return !less
	})
}

func cloneTask(t entities.Task) entities.Task {
	out := t
	if t.Description != nil {
		d := *t.Description
		out.Description = &d
	}
	if t.DueDate != nil {
		dd := *t.DueDate
		out.DueDate = &dd
	}
	if t.Category != nil {
		c := *t.Category
		out.Category = &c
	}
	return out
}
