// Package client is a Go consumer of the TidyTasks API. It keeps a
// per-filter cache of list results and applies mutations optimistically:
// the local cache is patched before the server confirms, rolled back to
// the pre-mutation snapshot on failure, and invalidated on settlement so
// the next read reconciles with the server's authoritative state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tidytasks/api/pkg/filterstate"
)

// Task mirrors the API's task representation.
type Task struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Category    *string    `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListResult is a task listing with its post-filter total.
type ListResult struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// CreateTaskRequest carries the fields for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Category    *string    `json:"category,omitempty"`
}

// UpdateTaskRequest carries a partial update; nil fields are untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Category    *string    `json:"category,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// MutationState tracks the lifecycle of an optimistic mutation.
type MutationState int

const (
	// MutationPending means the optimistic patch is applied and the
	// server has not yet answered.
	MutationPending MutationState = iota
	// MutationConfirmed means the server accepted the mutation.
	MutationConfirmed
	// MutationRolledBack means the server rejected the mutation and the
	// cache was restored to its pre-mutation snapshot.
	MutationRolledBack
)

// String returns the state's name.
func (s MutationState) String() string {
	switch s {
	case MutationPending:
		return "pending"
	case MutationConfirmed:
		return "confirmed"
	case MutationRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// MutationResult reports how a mutation settled.
type MutationResult struct {
	State MutationState
	// Task is the server's authoritative row; nil for deletes and for
	// rolled-back mutations.
	Task *Task
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets a static bearer token for every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client is a TidyTasks API client with an optimistic list cache.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu     sync.Mutex
	cache  map[string]*cacheEntry
	tempID int64

	flight singleflight.Group
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the tasks matching the filter state. A fresh cached
// result is served locally; otherwise the server is consulted, with
// concurrent requests for the same filter key coalesced.
func (c *Client) List(ctx context.Context, fs filterstate.FilterState) (ListResult, error) {
	key := fs.Encode()

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && !entry.stale {
		result := entry.clone()
		c.mu.Unlock()
		return result, nil
	}
	c.mu.Unlock()

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		path := "/api/tasks"
		if key != "" {
			path += "?" + key
		}

		var result ListResult
		if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
			return nil, err
		}

		entry := &cacheEntry{result: result}
		c.mu.Lock()
		c.cache[key] = entry
		c.mu.Unlock()

		return entry, nil
	})
	if err != nil {
		return ListResult{}, err
	}

	// Hand back a copy: the cached entry keeps getting patched by
	// optimistic mutations after this call returns.
	entry := v.(*cacheEntry)
	c.mu.Lock()
	defer c.mu.Unlock()
	return entry.clone(), nil
}

// Create adds a task. The cache is patched with a provisional row before
// the request is sent; on rejection the pre-mutation snapshot is
// restored. Either way every cached listing is marked stale on
// settlement, because the provisional row never carries server-assigned
// fields.
func (c *Client) Create(ctx context.Context, req CreateTaskRequest) (MutationResult, error) {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.tempID--
	provisional := provisionalTask(c.tempID, req)
	c.applyLocked(func(key string, entry *cacheEntry) {
		if matchesFilter(key, provisional) {
			entry.result.Tasks = append(entry.result.Tasks, provisional)
			entry.result.Total++
		}
	})
	c.mu.Unlock()

	var created Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", req, &created)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.restoreLocked(snapshot)
		c.invalidateLocked()
		return MutationResult{State: MutationRolledBack}, err
	}

	c.invalidateLocked()
	return MutationResult{State: MutationConfirmed, Task: &created}, nil
}

// Update patches a task. Cached copies of the task are patched
// optimistically and restored from the pre-mutation snapshot if the
// server rejects the change.
func (c *Client) Update(ctx context.Context, id int64, req UpdateTaskRequest) (MutationResult, error) {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.applyLocked(func(key string, entry *cacheEntry) {
		for i := range entry.result.Tasks {
			if entry.result.Tasks[i].ID == id {
				patchTask(&entry.result.Tasks[i], req)
			}
		}
	})
	c.mu.Unlock()

	var updated Task
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), req, &updated)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.restoreLocked(snapshot)
		c.invalidateLocked()
		return MutationResult{State: MutationRolledBack}, err
	}

	c.invalidateLocked()
	return MutationResult{State: MutationConfirmed, Task: &updated}, nil
}

// Delete removes a task. Cached copies disappear immediately and come
// back via snapshot restore if the server rejects the delete.
func (c *Client) Delete(ctx context.Context, id int64) (MutationResult, error) {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.applyLocked(func(key string, entry *cacheEntry) {
		kept := entry.result.Tasks[:0]
		for _, t := range entry.result.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		if removed := len(entry.result.Tasks) - len(kept); removed > 0 {
			entry.result.Total -= removed
		}
		entry.result.Tasks = kept
	})
	c.mu.Unlock()

	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.restoreLocked(snapshot)
		c.invalidateLocked()
		return MutationResult{State: MutationRolledBack}, err
	}

	c.invalidateLocked()
	return MutationResult{State: MutationConfirmed}, nil
}

// CachedList returns the cached listing for a filter state without any
// network access. The second return is false when nothing is cached.
func (c *Client) CachedList(fs filterstate.FilterState) (ListResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[fs.Encode()]
	if !ok {
		return ListResult{}, false
	}
	return entry.clone(), true
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	var payload struct {
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		apiErr.Fields = payload.Fields
	}

	return apiErr
}
