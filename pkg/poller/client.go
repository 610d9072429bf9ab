// Package poller provides a client for machine callers of the external todo
// API, plus a cooperative polling loop that watches todos until their
// enhancement reaches a terminal status.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Enhancement status values mirrored from the API.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Todo is the API representation of a todo row.
type Todo struct {
	ID                uint       `json:"id"`
	UserID            uint       `json:"user_id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	IsCompleted       bool       `json:"is_completed"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	EnhancedTitle     *string    `json:"enhanced_title"`
	Steps             []string   `json:"steps"`
	EnhancementStatus string     `json:"enhancement_status"`
	Source            string     `json:"source"`
}

// Terminal reports whether the enhancement has resolved, successfully or not.
func (t Todo) Terminal() bool {
	return t.EnhancementStatus == StatusDone || t.EnhancementStatus == StatusFailed
}

// Client calls the external todo API, identifying its user by phone number or
// id headers and itself by the caller-name bearer key.
type Client struct {
	baseURL    string
	httpClient *http.Client

	userPhone string
	userID    uint
	callFrom  string
	apiKey    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithUserPhone identifies the acting user by phone number.
func WithUserPhone(phone string) ClientOption {
	return func(client *Client) {
		client.userPhone = phone
	}
}

// WithUserID identifies the acting user by numeric id.
func WithUserID(id uint) ClientOption {
	return func(client *Client) {
		client.userID = id
	}
}

// WithBearer sets the caller name and its configured API key.
func WithBearer(callFrom, apiKey string) ClientOption {
	return func(client *Client) {
		client.callFrom = callFrom
		client.apiKey = apiKey
	}
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) setHeaders(req *http.Request) {
	if c.userPhone != "" {
		req.Header.Set("x-user-phone", c.userPhone)
	} else if c.userID != 0 {
		req.Header.Set("x-user-id", strconv.FormatUint(uint64(c.userID), 10))
	}
	if c.callFrom != "" {
		req.Header.Set("x-call-from", c.callFrom)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if env.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", path, env.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}
	return nil
}

// GetTodo fetches a single todo, scoped to the client's user identity.
func (c *Client) GetTodo(ctx context.Context, id uint) (*Todo, error) {
	var todo Todo
	if err := c.get(ctx, fmt.Sprintf("/external/todos/%d", id), &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListTodos fetches all todos for the client's user identity.
func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.get(ctx, "/external/todos/", &todos); err != nil {
		return nil, err
	}
	return todos, nil
}
