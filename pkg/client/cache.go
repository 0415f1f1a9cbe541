package client

import (
	"strings"
	"time"

	"github.com/tidytasks/api/pkg/filterstate"
)

// cacheEntry holds one filter key's listing. A stale entry is kept for
// reads of CachedList but bypassed by List.
type cacheEntry struct {
	result ListResult
	stale  bool
}

func (e *cacheEntry) clone() ListResult {
	tasks := make([]Task, len(e.result.Tasks))
	copy(tasks, e.result.Tasks)
	return ListResult{Tasks: tasks, Total: e.result.Total}
}

// snapshotLocked deep-copies the whole cache. Callers hold c.mu.
func (c *Client) snapshotLocked() map[string]*cacheEntry {
	snapshot := make(map[string]*cacheEntry, len(c.cache))
	for key, entry := range c.cache {
		clone := entry.clone()
		snapshot[key] = &cacheEntry{result: clone, stale: entry.stale}
	}
	return snapshot
}

// restoreLocked replaces the cache with a previously taken snapshot.
func (c *Client) restoreLocked(snapshot map[string]*cacheEntry) {
	c.cache = snapshot
}

// applyLocked runs an optimistic patch over every cached entry.
func (c *Client) applyLocked(patch func(key string, entry *cacheEntry)) {
	for key, entry := range c.cache {
		patch(key, entry)
	}
}

// invalidateLocked marks every entry stale so the next List refetches.
// Mandatory on settlement even after success: optimistic rows never
// carry server-computed fields such as updated_at.
func (c *Client) invalidateLocked() {
	for _, entry := range c.cache {
		entry.stale = true
	}
}

// provisionalTask builds the optimistic row for a create. The negative
// ID marks it as not server-assigned; it is replaced on refetch.
func provisionalTask(tempID int64, req CreateTaskRequest) Task {
	now := time.Now().UTC()
	task := Task{
		ID:          tempID,
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    "medium",
		DueDate:     req.DueDate,
		Category:    req.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	return task
}

// patchTask applies the non-nil fields of a partial update in place.
func patchTask(task *Task, req UpdateTaskRequest) {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Category != nil {
		task.Category = req.Category
	}
	task.UpdatedAt = time.Now().UTC()
}

// matchesFilter reports whether a task would appear in the listing for
// the given cache key. Used to decide which cached lists receive an
// optimistic insert.
func matchesFilter(key string, task Task) bool {
	fs := filterstate.ParseQuery(key)

	if fs.Search != "" {
		needle := strings.ToLower(fs.Search)
		inTitle := strings.Contains(strings.ToLower(task.Title), needle)
		inDescription := task.Description != nil &&
			strings.Contains(strings.ToLower(*task.Description), needle)
		if !inTitle && !inDescription {
			return false
		}
	}

	if fs.Priority != "" && task.Priority != fs.Priority {
		return false
	}

	if fs.Category != "" {
		if task.Category == nil || !strings.EqualFold(*task.Category, fs.Category) {
			return false
		}
	}

	return true
}
