// Package sdk is the Go client for the LoVirtual REST API. It is what the
// admin CLI uses and what other services embed.
package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Bleutonik/lovirtual-backend/pkg/schema"
)

// Client talks to one backend instance. It is safe for concurrent use once
// the token is set.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given base URL (scheme and host, no /api).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs a previously obtained bearer token.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token (empty before login).
func (c *Client) Token() string { return c.token }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+"/api"+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	if res.StatusCode >= 400 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = res.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, msg)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// Login authenticates and keeps the issued token on the client.
func (c *Client) Login(username, password string) (schema.User, error) {
	var result struct {
		Token string      `json:"token"`
		User  schema.User `json:"user"`
	}
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return schema.User{}, err
	}
	c.token = result.Token
	return result.User, nil
}

// Logout revokes the client's token.
func (c *Client) Logout() error {
	err := c.do(http.MethodPost, "/auth/logout", struct{}{}, nil)
	if err == nil {
		c.token = ""
	}
	return err
}

// Me fetches the account behind the token.
func (c *Client) Me() (schema.User, error) {
	var user schema.User
	err := c.do(http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

// Users lists every account. Requires an admin token.
func (c *Client) Users() ([]schema.User, error) {
	var users []schema.User
	err := c.do(http.MethodGet, "/users", nil, &users)
	return users, err
}

// CreateAnnouncement publishes an announcement. Requires an admin or
// supervisor token.
func (c *Client) CreateAnnouncement(title, content, category string) (schema.Announcement, error) {
	var announcement schema.Announcement
	err := c.do(http.MethodPost, "/announcements", map[string]string{
		"title":    title,
		"content":  content,
		"category": category,
	}, &announcement)
	return announcement, err
}

// HealthStatus is what the health endpoint reports.
type HealthStatus struct {
	Status      string         `json:"status"`
	Backend     string         `json:"backend"`
	Collections map[string]int `json:"collections"`
}

// Health checks liveness and returns the active backend and collection
// counts.
func (c *Client) Health() (HealthStatus, error) {
	var result HealthStatus
	if err := c.do(http.MethodGet, "/health", nil, &result); err != nil {
		return HealthStatus{}, err
	}
	if result.Status != "ok" {
		return result, fmt.Errorf("backend reports status %q", result.Status)
	}
	return result, nil
}
