// Package client is a typed HTTP client for the SmartShuttle JSON API.
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

	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/passenger"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// Client calls the API. Set the token with SetToken after signing in.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, in auth.RegisterInput) (auth.Session, error) {
	var sess auth.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &sess); err != nil {
		return auth.Session{}, err
	}
	c.token = sess.Token
	return sess, nil
}

// Login signs in and keeps the returned token.
func (c *Client) Login(ctx context.Context, in auth.LoginInput) (auth.Session, error) {
	var sess auth.Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &sess); err != nil {
		return auth.Session{}, err
	}
	c.token = sess.Token
	return sess, nil
}

// User is the account returned by Me.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/me", nil, &out)
	return out.User, err
}

func (c *Client) Dashboard(ctx context.Context) (passenger.Dashboard, error) {
	var d passenger.Dashboard
	err := c.do(ctx, http.MethodGet, "/api/passenger/dashboard", nil, &d)
	return d, err
}

func (c *Client) Notifications(ctx context.Context, filter string) (passenger.NotificationFeed, error) {
	var feed passenger.NotificationFeed
	path := "/api/passenger/notifications"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}
	err := c.do(ctx, http.MethodGet, path, nil, &feed)
	return feed, err
}

func (c *Client) MarkNotificationsRead(ctx context.Context) (passenger.NotificationFeed, error) {
	var feed passenger.NotificationFeed
	err := c.do(ctx, http.MethodPost, "/api/passenger/notifications/read", nil, &feed)
	return feed, err
}

func (c *Client) Trips(ctx context.Context) (passenger.Trips, error) {
	var t passenger.Trips
	err := c.do(ctx, http.MethodGet, "/api/passenger/trips", nil, &t)
	return t, err
}

func (c *Client) Tracking(ctx context.Context) (passenger.Tracking, error) {
	var t passenger.Tracking
	err := c.do(ctx, http.MethodGet, "/api/passenger/tracking", nil, &t)
	return t, err
}

func (c *Client) Profile(ctx context.Context) (passenger.Profile, error) {
	var p passenger.Profile
	err := c.do(ctx, http.MethodGet, "/api/passenger/profile", nil, &p)
	return p, err
}
