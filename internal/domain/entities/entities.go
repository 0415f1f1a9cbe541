package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Field length limits enforced on create and update
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 2000
	MaxCategoryLength    = 100
)

// Priority levels for a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether the priority is one of the known levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank returns a numeric weight for sorting (high sorts above low).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task represents a single to-do item owned by exactly one user.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Category    *string    `json:"category" db:"category"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ValidationError carries field-level validation messages.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates an empty validation error.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a field-level message.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

// HasErrors reports whether any field failed validation.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ValidateTitle checks the title constraints shared by create and update.
func ValidateTitle(title string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return "title is required", false
	}
	if len(title) > MaxTitleLength {
		return fmt.Sprintf("title must be at most %d characters", MaxTitleLength), false
	}
	return "", true
}

// ValidateDescription checks the optional description length.
func ValidateDescription(description string) (string, bool) {
	if len(description) > MaxDescriptionLength {
		return fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength), false
	}
	return "", true
}

// ValidateCategory checks the optional category length.
func ValidateCategory(category string) (string, bool) {
	if len(category) > MaxCategoryLength {
		return fmt.Sprintf("category must be at most %d characters", MaxCategoryLength), false
	}
	return "", true
}

// IsOverdue reports whether the task is past its due date and still open.
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil {
		return false
	}
	return time.Now().After(*t.DueDate) && !t.IsCompleted
}

// HasCategory reports whether the task matches the given category,
// compared case-insensitively.
func (t *Task) HasCategory(category string) bool {
	if t.Category == nil {
		return false
	}
	return strings.EqualFold(*t.Category, category)
}
