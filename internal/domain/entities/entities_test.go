package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriorityIsValid(t *testing.T) {
	assert.True(t, PriorityLow.IsValid())
	assert.True(t, PriorityMedium.IsValid())
	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("urgent").IsValid())
	assert.False(t, Priority("").IsValid())
}

func TestPriorityRankOrdering(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, PriorityLow.Rank(), Priority("").Rank())
}

func TestValidateTitle(t *testing.T) {
	_, ok := ValidateTitle("Buy milk")
	assert.True(t, ok)

	msg, ok := ValidateTitle("")
	assert.False(t, ok)
	assert.Contains(t, msg, "required")

	msg, ok = ValidateTitle("   ")
	assert.False(t, ok)
	assert.Contains(t, msg, "required")

	_, ok = ValidateTitle(strings.Repeat("x", MaxTitleLength))
	assert.True(t, ok)

	msg, ok = ValidateTitle(strings.Repeat("x", MaxTitleLength+1))
	assert.False(t, ok)
	assert.Contains(t, msg, "255")
}

func TestValidateDescription(t *testing.T) {
	_, ok := ValidateDescription(strings.Repeat("x", MaxDescriptionLength))
	assert.True(t, ok)

	_, ok = ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1))
	assert.False(t, ok)
}

func TestValidateCategory(t *testing.T) {
	_, ok := ValidateCategory(strings.Repeat("x", MaxCategoryLength))
	assert.True(t, ok)

	_, ok = ValidateCategory(strings.Repeat("x", MaxCategoryLength+1))
	assert.False(t, ok)
}

func TestValidationErrorCollectsFields(t *testing.T) {
	verr := NewValidationError()
	assert.False(t, verr.HasErrors())

	verr.Add("title", "title is required")
	verr.Add("category", "too long")

	assert.True(t, verr.HasErrors())
	assert.Contains(t, verr.Error(), "validation failed")
	assert.Contains(t, verr.Error(), "title is required")
}

func TestTaskIsOverdue(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.False(t, (&Task{}).IsOverdue())
	assert.True(t, (&Task{DueDate: &past}).IsOverdue())
	assert.False(t, (&Task{DueDate: &past, IsCompleted: true}).IsOverdue())
	assert.False(t, (&Task{DueDate: &future}).IsOverdue())
}

func TestTaskHasCategory(t *testing.T) {
	groceries := "Groceries"
	task := &Task{Category: &groceries}

	assert.True(t, task.HasCategory("groceries"))
	assert.True(t, task.HasCategory("GROCERIES"))
	assert.False(t, task.HasCategory("work"))
	assert.False(t, (&Task{}).HasCategory("groceries"))
}
