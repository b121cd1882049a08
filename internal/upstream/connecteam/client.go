// Package connecteam is the direct HTTP client for the workforce-scheduling
// API, used as the fallback transport for user and task operations.
package connecteam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"opshub/internal/upstream"
)

const maxErrorBody = 1000

// Client issues authenticated requests against the Connecteam REST API.
type Client struct {
	apiKey      string
	baseURL     string
	taskboardID string
	http        *http.Client
}

func NewClient(apiKey, baseURL, taskboardID string) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		taskboardID: taskboardID,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Ready reports whether the API credential is configured. Checked before
// the subprocess transport is attempted, so a missing key surfaces as a
// typed CredentialError on both paths instead of a flattened tool error.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return &upstream.CredentialError{Name: "CONNECTTEAM_API_KEY"}
	}
	return nil
}

// TasksReady additionally requires the taskboard id the task listing is
// scoped to.
func (c *Client) TasksReady() error {
	if err := c.Ready(); err != nil {
		return err
	}
	if _, err := c.requireTaskboard(); err != nil {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, payload any) (map[string]any, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", operation, err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return map[string]any{"ok": true, "status": resp.StatusCode}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(respBody)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &upstream.APIError{Operation: operation, Status: resp.StatusCode, Body: snippet}
	}

	var doc map[string]any
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("%s returned invalid JSON: %w", operation, err)
	}
	return doc, nil
}

func (c *Client) requireTaskboard() (string, error) {
	if c.taskboardID == "" {
		return "", &upstream.CredentialError{Name: "CONNECTEAM_TASKBOARD_ID"}
	}
	return c.taskboardID, nil
}

// Users retrieves active users.
func (c *Client) Users(ctx context.Context, limit, offset int) (map[string]any, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("order", "asc")
	query.Set("userStatus", "active")
	return c.do(ctx, "fetch users", http.MethodGet, "/users/v1/users", query, nil)
}

// ListTasks lists tasks on the configured taskboard with a status filter
// and pagination.
func (c *Client) ListTasks(ctx context.Context, status string, limit, offset int) (map[string]any, error) {
	board, err := c.requireTaskboard()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("status", status)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	return c.do(ctx, "list tasks", http.MethodGet, "/tasks/v1/taskboards/"+board+"/tasks", query, nil)
}

// GetTask retrieves one task by id.
func (c *Client) GetTask(ctx context.Context, taskID string) (map[string]any, error) {
	return c.do(ctx, "fetch task", http.MethodGet, "/tasks/v1/tasks/"+taskID, nil, nil)
}

// CreateTask creates a task from the given payload.
func (c *Client) CreateTask(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.do(ctx, "create task", http.MethodPost, "/tasks/v1/tasks", nil, payload)
}

// UpdateTask updates an existing task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, payload map[string]any) (map[string]any, error) {
	return c.do(ctx, "update task", http.MethodPut, "/tasks/v1/tasks/"+taskID, nil, payload)
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, taskID string) (map[string]any, error) {
	return c.do(ctx, "delete task", http.MethodDelete, "/tasks/v1/tasks/"+taskID, nil, nil)
}

// Taskboards lists the available taskboards.
func (c *Client) Taskboards(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, "list taskboards", http.MethodGet, "/tasks/v1/taskboards", nil, nil)
}
