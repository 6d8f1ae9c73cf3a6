package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/focusdeck/focusdeck/internal/logger"
	"github.com/focusdeck/focusdeck/internal/model"
)

// TokenFunc supplies the current bearer token, or "" when logged out
type TokenFunc func() string

// Client is the HTTP implementation of Remote against a focusdeck
// sync server.
type Client struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
}

// NewClient creates a remote client. token is consulted per request so
// session refreshes are picked up.
func NewClient(baseURL string, token TokenFunc) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	logger.Debug("HTTP Request", logger.F("method", method), logger.F("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("error", err), logger.F("url", url))
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	logger.Debug("HTTP Response", logger.F("status", resp.StatusCode), logger.F("url", url))

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// SelectProjects implements Remote
func (c *Client) SelectProjects(ctx context.Context) ([]ProjectRow, error) {
	var rows []ProjectRow
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectTasks implements Remote
func (c *Client) SelectTasks(ctx context.Context, archived bool) ([]TaskRow, error) {
	var rows []TaskRow
	if err := c.do(ctx, http.MethodGet, taskPath(archived), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertProjects implements Remote
func (c *Client) UpsertProjects(ctx context.Context, rows []ProjectRow) error {
	return c.do(ctx, http.MethodPost, "/api/v1/projects", map[string]interface{}{"rows": rows}, nil)
}

// UpsertTasks implements Remote
func (c *Client) UpsertTasks(ctx context.Context, archived bool, rows []TaskRow) error {
	return c.do(ctx, http.MethodPost, taskPath(archived), map[string]interface{}{"rows": rows}, nil)
}

// DeleteProjects implements Remote
func (c *Client) DeleteProjects(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/projects/delete", map[string]interface{}{"ids": ids}, nil)
}

// DeleteTasks implements Remote
func (c *Client) DeleteTasks(ctx context.Context, archived bool, ids []string) error {
	return c.do(ctx, http.MethodPost, taskPath(archived)+"/delete", map[string]interface{}{"ids": ids}, nil)
}

// FetchProfile implements Remote
func (c *Client) FetchProfile(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func taskPath(archived bool) string {
	if archived {
		return "/api/v1/archived-tasks"
	}
	return "/api/v1/tasks"
}

// ---- Auth ----

type authResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
}

// Register creates a new account and returns its session
func (c *Client) Register(ctx context.Context, username, email, password string) (*model.Session, *model.User, error) {
	var result authResult
	err := c.do(ctx, http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, nil, fmt.Errorf("register failed: %w", err)
	}
	return result.session(), result.user(), nil
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) (*model.Session, *model.User, error) {
	var result authResult
	err := c.do(ctx, http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, nil, fmt.Errorf("login failed: %w", err)
	}
	return result.session(), result.user(), nil
}

// Logout invalidates the session server-side
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil)
}

// CreateCheckoutSession asks the server for an upgrade checkout URL.
// Unlike sync traffic, a failure here is surfaced to the caller.
func (c *Client) CreateCheckoutSession(ctx context.Context) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/checkout", nil, &result); err != nil {
		return "", fmt.Errorf("checkout session failed: %w", err)
	}
	return result.URL, nil
}

func (r *authResult) session() *model.Session {
	return &model.Session{
		UserID:    r.UserID,
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
	}
}

func (r *authResult) user() *model.User {
	return &model.User{
		ID:       r.UserID,
		Username: r.Username,
		Email:    r.Email,
	}
}
