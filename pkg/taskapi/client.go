// Package taskapi talks to the task service and its language-model endpoints
// over HTTP/JSON.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

const requestIDHeader = "X-Request-ID"

type Client struct {
	base         *url.URL
	http         *http.Client
	smartTimeout time.Duration
	log          *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(log *slog.Logger) Option { return func(c *Client) { c.log = log } }

// WithSmartTimeout bounds the language-model calls, which are much slower
// than plain CRUD.
func WithSmartTimeout(d time.Duration) Option { return func(c *Client) { c.smartTimeout = d } }

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse task service url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("task service url %q must be absolute", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Filter narrows a task listing. Zero values mean "no filter".
type Filter struct {
	Status   model.Status
	Priority model.Priority
	Limit    int
}

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return &model.ServiceError{Op: "health", Message: fmt.Sprintf("status %q", out.Status)}
	}
	return nil
}

// ListTasks fetches the full collection.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	return c.ListFiltered(ctx, Filter{})
}

func (c *Client) ListFiltered(ctx context.Context, f Filter) ([]model.Task, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []model.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, d model.Draft) (model.Task, error) {
	var t model.Task
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", d, &t); err != nil {
		return model.Task{}, err
	}
	if t.ID == "" {
		return model.Task{}, &model.ParseError{Op: "create task", Err: errors.New("created task has no id")}
	}
	return t, nil
}

func (c *Client) PatchTask(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	var t model.Task
	if err := c.do(ctx, "patch task", http.MethodPatch, "/tasks/"+url.PathEscape(id), p, &t); err != nil {
		return model.Task{}, err
	}
	if t.ID == "" {
		return model.Task{}, &model.ParseError{Op: "patch task", Err: errors.New("updated task has no id")}
	}
	return t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

type nlRequest struct {
	Text        string `json:"text"`
	CurrentTime string `json:"current_time,omitempty"`
}

// SmartAdd returns the raw smart-add body: one task object or an array.
func (c *Client) SmartAdd(ctx context.Context, text, currentTime string) ([]byte, error) {
	ctx, cancel := c.smartContext(ctx)
	defer cancel()
	var raw json.RawMessage
	if err := c.do(ctx, "smart add", http.MethodPost, "/ai/smart-add", nlRequest{Text: text, CurrentTime: currentTime}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SmartUpdate returns the raw smart-update body.
func (c *Client) SmartUpdate(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := c.smartContext(ctx)
	defer cancel()
	var raw json.RawMessage
	if err := c.do(ctx, "smart update", http.MethodPost, "/ai/update", nlRequest{Text: text}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Search(ctx context.Context, text string) ([]model.Task, error) {
	ctx, cancel := c.smartContext(ctx)
	defer cancel()
	var tasks []model.Task
	if err := c.do(ctx, "smart search", http.MethodPost, "/ai/search", nlRequest{Text: text}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) smartContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.smartTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.smartTimeout)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// The smart endpoints run under their own deadline, so the client-wide
	// timeout must not cut them short.
	hc := c.http
	if strings.HasPrefix(path, "/ai/") && c.smartTimeout > 0 {
		clone := *c.http
		clone.Timeout = 0
		hc = &clone
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "method", method, "path", path, "request_id", reqID, "error", err)
		return &model.ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.Debug("request done", "op", op, "method", method, "path", path, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.ServiceError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.ParseError{Op: op, Err: err}
	}
	return nil
}

// errorMessage extracts {"detail": ...} or {"error": ...} from an error body.
func errorMessage(data []byte) string {
	var body struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		switch d := body.Detail.(type) {
		case string:
			return d
		case nil:
		default:
			b, _ := json.Marshal(d)
			return string(b)
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
