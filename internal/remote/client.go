// Package remote talks to the document store's HTTP JSON API. The store is
// an external collaborator; this client preserves its wire contract and
// nothing more.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"week-planner/internal/model"
)

// Client issues CRUD requests for tasks, settings and schedule data.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

func NewClient(baseURL string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// statusError distinguishes an HTTP-level rejection from transport failure.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.Code, e.Body)
}

// IsNotFound reports whether the error is a 404 response.
func IsNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debugw("remote call failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %w", method, path, &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// CreateTask stores the task and returns the id the server settled on,
// which may differ from the client-assigned one.
func (c *Client) CreateTask(ctx context.Context, task model.Task) (string, error) {
	var resp struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tasks", task, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return task.ID, nil
	}
	return resp.ID, nil
}

// UpdateTask applies a partial update to the stored task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	return c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), patch, nil)
}

// DeleteTask removes the task. A 404 is reported as such so callers can
// treat deleting an already-absent task as non-fatal.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// BulkDeleteTasks removes several tasks in one call.
func (c *Client) BulkDeleteTasks(ctx context.Context, ids []string) error {
	payload := map[string][]string{"task_ids": ids}
	return c.do(ctx, http.MethodPost, "/api/tasks/bulk-delete", payload, nil)
}

// ListTasks fetches every stored task.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var resp struct {
		Status string       `json:"status"`
		Tasks  []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// GetSettings fetches the stored notification settings.
func (c *Client) GetSettings(ctx context.Context) (model.UserSettings, error) {
	var settings model.UserSettings
	if err := c.do(ctx, http.MethodGet, "/api/notification-settings", nil, &settings); err != nil {
		return model.UserSettings{}, err
	}
	settings.Normalize()
	return settings, nil
}

// PutSettings stores the notification settings.
func (c *Client) PutSettings(ctx context.Context, settings model.UserSettings) error {
	return c.do(ctx, http.MethodPost, "/api/notification-settings", settings, nil)
}

// GetClassSchedule fetches the stored class schedule.
func (c *Client) GetClassSchedule(ctx context.Context) (model.ClassScheduleData, error) {
	var data model.ClassScheduleData
	if err := c.do(ctx, http.MethodGet, "/api/class-schedule", nil, &data); err != nil {
		return model.ClassScheduleData{}, err
	}
	return data, nil
}

// PutClassSchedule stores the class schedule.
func (c *Client) PutClassSchedule(ctx context.Context, data model.ClassScheduleData) error {
	return c.do(ctx, http.MethodPost, "/api/class-schedule", data, nil)
}
