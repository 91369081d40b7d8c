package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/ports"
)

// ErrNetwork wraps transport failures where no response was received
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client talks to the calendar REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:3000/api
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges credentials for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", ports.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// ListEvents returns every event of the caller
func (c *Client) ListEvents(ctx context.Context) ([]*entities.CalendarEvent, error) {
	events := []*entities.CalendarEvent{}
	if err := c.do(ctx, http.MethodGet, "/calendar/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent returns one event with recipe content and checklist
func (c *Client) GetEvent(ctx context.Context, id int64) (*entities.CalendarEvent, error) {
	var event entities.CalendarEvent
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/calendar/events/%d", id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent creates an event and returns the stored version
func (c *Client) CreateEvent(ctx context.Context, req ports.EventRequest) (*entities.CalendarEvent, error) {
	var event entities.CalendarEvent
	if err := c.do(ctx, http.MethodPost, "/calendar/events", req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent replaces an event and returns the stored version
func (c *Client) UpdateEvent(ctx context.Context, id int64, req ports.EventRequest) (*entities.CalendarEvent, error) {
	var event entities.CalendarEvent
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/calendar/events/%d", id), req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/calendar/events/%d", id), nil, nil)
}

// CompleteEvent marks an event as cooked
func (c *Client) CompleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/calendar/events/%d/complete", id), nil, nil)
}

// UpdateChecklist replaces the ingredient checklist of an event
func (c *Client) UpdateChecklist(ctx context.Context, id int64, states map[string]bool) error {
	body := ports.ChecklistRequest{Ingredients: states}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/calendar/events/%d/checklist", id), body, nil)
}

// ExportICS downloads the caller's calendar in iCalendar format
func (c *Client) ExportICS(ctx context.Context) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/calendar/export.ics", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apiError(resp.StatusCode, raw)
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

func apiError(status int, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return &APIError{Status: status, Message: env.Message}
}
