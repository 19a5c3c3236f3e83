// Package client talks to the task API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout bounds every request. Without it the transport default applies.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var wire []wireTask
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &wire); err != nil {
		return nil, err
	}
	tasks := make([]task.Task, len(wire))
	for i, w := range wire {
		tasks[i] = w.toTask()
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var wire wireTask
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &wire); err != nil {
		return task.Task{}, err
	}
	return wire.toTask(), nil
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (task.Task, error) {
	var wire wireTask
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &wire); err != nil {
		return task.Task{}, err
	}
	return wire.toTask(), nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (task.Task, error) {
	var wire wireTask
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), req, &wire); err != nil {
		return task.Task{}, err
	}
	return wire.toTask(), nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListPersons(ctx context.Context, role person.Role) ([]person.Person, error) {
	path := "/persons"
	if role != "" {
		path += "?role=" + url.QueryEscape(string(role))
	}
	var persons []person.Person
	if err := c.do(ctx, http.MethodGet, path, nil, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.Debug("Client: response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("ms", time.Since(start)))

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error   string         `json:"error"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		apiErr.Details = body.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
