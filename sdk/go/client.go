package somadevsdk

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
)

// Client is a minimal SomaDev HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// Agent represents the API agent model.
type Agent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CurrentTask    string    `json:"current_task,omitempty"`
	LastActive     time.Time `json:"last_active"`
	TasksCompleted int       `json:"tasks_completed"`
	Color          string    `json:"color"`
}

// Task represents the API task model (partial).
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Assignee    string    `json:"assignee,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `json:"tags"`
}

// Column is one kanban column.
type Column struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Tasks  []Task `json:"tasks"`
}

type Board struct {
	Columns []Column `json:"columns"`
	Summary struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	} `json:"summary"`
}

// LogEntry represents an activity log line.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Agent     string    `json:"agent,omitempty"`
	ProjectID string    `json:"project_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
}

// ChatMessage represents one chat line.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Agent     string    `json:"agent,omitempty"`
}

type Chat struct {
	Accepted bool          `json:"accepted"`
	Typing   bool          `json:"typing"`
	Messages []ChatMessage `json:"messages"`
}

type GeneratedFile struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// Generation is the canvas code generation state.
type Generation struct {
	Status   string          `json:"status"`
	Progress int             `json:"progress"`
	Prompt   string          `json:"prompt,omitempty"`
	Files    []GeneratedFile `json:"files"`
}

// TaskFilter narrows task and board listings. Zero values match everything.
type TaskFilter struct {
	Search   string
	Assignee string
}

func (f TaskFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Assignee != "" {
		q.Set("assignee", f.Assignee)
	}
	return q
}

// LogFilter narrows log listings. Zero values match everything.
type LogFilter struct {
	Search string
	Level  string
	Agent  string
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Health checks the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.path("health", nil), nil, nil)
}

func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	var resp []Agent
	err := c.do(ctx, http.MethodGet, c.path("agents", nil), nil, &resp)
	return resp, err
}

func (c *Client) Tasks(ctx context.Context, f TaskFilter) ([]Task, error) {
	var resp []Task
	err := c.do(ctx, http.MethodGet, c.path("tasks", f.query()), nil, &resp)
	return resp, err
}

func (c *Client) Board(ctx context.Context, f TaskFilter) (Board, error) {
	var resp Board
	err := c.do(ctx, http.MethodGet, c.path("kanban", f.query()), nil, &resp)
	return resp, err
}

// MoveTask drops a task on a column. It reports whether the id matched.
func (c *Client) MoveTask(ctx context.Context, taskID, status string) (bool, error) {
	var resp struct {
		Matched bool `json:"matched"`
	}
	endpoint := c.path(fmt.Sprintf("tasks/%s/move", url.PathEscape(taskID)), nil)
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"status": status}, &resp)
	return resp.Matched, err
}

func (c *Client) Logs(ctx context.Context, f LogFilter) ([]LogEntry, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.Agent != "" {
		q.Set("agent", f.Agent)
	}
	var resp []LogEntry
	err := c.do(ctx, http.MethodGet, c.path("logs", q), nil, &resp)
	return resp, err
}

func (c *Client) Chat(ctx context.Context) (Chat, error) {
	var resp Chat
	err := c.do(ctx, http.MethodGet, c.path("chat/messages", nil), nil, &resp)
	return resp, err
}

// SendChat submits a message; the reply arrives later.
func (c *Client) SendChat(ctx context.Context, content string) (Chat, error) {
	var resp Chat
	err := c.do(ctx, http.MethodPost, c.path("chat/messages", nil), map[string]any{"content": content}, &resp)
	return resp, err
}

// Generate starts a canvas generation run.
func (c *Client) Generate(ctx context.Context, prompt string) (bool, error) {
	var resp struct {
		Started bool `json:"started"`
	}
	err := c.do(ctx, http.MethodPost, c.path("canvas/generate", nil), map[string]any{"prompt": prompt}, &resp)
	return resp.Started, err
}

func (c *Client) Generation(ctx context.Context) (Generation, error) {
	var resp Generation
	err := c.do(ctx, http.MethodGet, c.path("canvas/generation", nil), nil, &resp)
	return resp, err
}

// GeneratedFile downloads one generated file as raw bytes.
func (c *Client) GeneratedFile(ctx context.Context, name string) ([]byte, error) {
	var buf bytes.Buffer
	err := c.do(ctx, http.MethodGet, c.path("canvas/files/"+url.PathEscape(name), nil), nil, &buf)
	return buf.Bytes(), err
}

// Reset restores the server's seeded state.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.path("reset", nil), nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	switch o := out.(type) {
	case nil:
		return nil
	case io.Writer:
		_, err := io.Copy(o, resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

func (c *Client) path(p string, q url.Values) string {
	base := strings.Trim(c.BasePath, "/")
	if base == "" {
		base = "v0"
	}
	out := base + "/" + strings.TrimLeft(p, "/")
	if len(q) > 0 {
		out += "?" + q.Encode()
	}
	return out
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
