// Package client is a typed HTTP client for the admin API, used by tooling
// that edits the project list outside the browser.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rpupo63/studio-portfolio-backend/models"
	"github.com/rpupo63/studio-portfolio-backend/ordering"
)

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int
	Message    string
	Details    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api returned %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			// Admin pages answer a missing session with a redirect; surface it as an error.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type Session struct {
	Token     string      `json:"token"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Login signs in and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, name, password string) (*Session, error) {
	var session Session
	body := map[string]string{"name": name, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/session", body, &session); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = session.Token
	c.mu.Unlock()
	return &session, nil
}

type ProjectPage struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ListProjects fetches the public list. Empty category and zero page/limit are omitted.
func (c *Client) ListProjects(ctx context.Context, category string, page, limit int) (*ProjectPage, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/projects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ProjectPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summaries(ctx context.Context) ([]models.ProjectSummary, error) {
	var out []models.ProjectSummary
	if err := c.do(ctx, http.MethodGet, "/admin/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reorder saves ids as the new display order. It satisfies ordering.Reconciler.
func (c *Client) Reorder(ctx context.Context, ids []string) (int64, error) {
	var out struct {
		Modified int64 `json:"modified"`
	}
	if err := c.do(ctx, http.MethodPut, "/project/order", map[string][]string{"ids": ids}, &out); err != nil {
		return 0, err
	}
	return out.Modified, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/project/"+url.PathEscape(id), nil, nil)
}

// LoadDragList fetches the admin summaries into a list ready for reordering.
func (c *Client) LoadDragList(ctx context.Context) (*ordering.DragList[models.ProjectSummary], error) {
	summaries, err := c.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	return ordering.New(summaries, func(s models.ProjectSummary) string { return s.ID.String() }), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body struct {
		Error   string            `json:"error"`
		Details string            `json:"details"`
		Fields  map[string]string `json:"fields"`
	}
	apiErr := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		apiErr.Fields = body.Fields
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
