package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tidytasks/api/internal/domain/entities"
	"github.com/tidytasks/api/internal/ports"
)

// Priority sorts by rank, not lexicographically.
const priorityRankExpr = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END"

// TaskRepository implements ports.TaskRepository on PostgreSQL.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and returns it with server-assigned fields.
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, is_completed, priority, due_date, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.UserID,
		task.Title,
		task.Description,
		task.IsCompleted,
		task.Priority,
		task.DueDate,
		task.Category,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetByID retrieves a task by ID, scoped to the owning user. A task
// owned by someone else is indistinguishable from a missing one.
func (r *TaskRepository) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*entities.Task, error) {
	query := `
		SELECT id, user_id, title, description, is_completed, priority, due_date, category, created_at, updated_at
		FROM tasks WHERE id = $1 AND user_id = $2
	`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// Update persists all mutable fields of the task, scoped to the owner.
func (r *TaskRepository) Update(ctx context.Context, userID uuid.UUID, task *entities.Task) (*entities.Task, error) {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, is_completed = $5, priority = $6, due_date = $7, category = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		userID,
		task.Title,
		task.Description,
		task.IsCompleted,
		task.Priority,
		task.DueDate,
		task.Category,
		task.UpdatedAt,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete removes a task permanently, scoped to the owner.
func (r *TaskRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

// List retrieves the user's tasks matching the filter, ordered per the
// filter's sort spec with ties broken by id ascending.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	whereClause, orderClause, args := buildListQuery(userID, filter)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, title, description, is_completed, priority, due_date, category, created_at, updated_at
		FROM tasks %s
		ORDER BY %s
	`, whereClause, orderClause)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entities.Task
	for rows.Next() {
		var task entities.Task
		if err := rows.StructScan(&task); err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, total, nil
}

// buildListQuery assembles the WHERE and ORDER BY clauses for a scoped
// listing. The user_id predicate is always first and never optional.
// Sort column and direction are whitelisted; raw filter input is only
// ever bound as a query argument.
func buildListQuery(userID uuid.UUID, filter ports.TaskFilter) (whereClause, orderClause string, args []interface{}) {
	conditions := []string{"user_id = $1"}
	args = append(args, userID)
	argIndex := 2

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, searchPattern)
		argIndex++
	}

	if filter.Priority != "" {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", argIndex))
		args = append(args, filter.Priority)
		argIndex++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(category) = LOWER($%d)", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	whereClause = "WHERE " + strings.Join(conditions, " AND ")

	var sortExpr string
	switch filter.SortBy {
	case ports.SortByDueDate:
		sortExpr = "due_date"
	case ports.SortByPriority:
		sortExpr = priorityRankExpr
	default:
		sortExpr = "created_at"
	}

	direction := "DESC"
	if filter.SortOrder == ports.SortOrderAsc {
		direction = "ASC"
	}

	orderClause = fmt.Sprintf("%s %s", sortExpr, direction)
	if filter.SortBy == ports.SortByDueDate {
		orderClause += " NULLS LAST"
	}
	orderClause += ", id ASC"

	return whereClause, orderClause, args
}
