// Package client is a typed HTTP client for the parking auth API. It holds
// the caller's Session and attaches its bearer token to authenticated calls.
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
)

// ErrNotAuthenticated is returned when a call needs a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a failure envelope returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
	StatusCode int             `json:"statusCode"`
}

type authData struct {
	User      Profile   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Client talks to the auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
	now     func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New builds a client. A nil store keeps the session in memory.
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	if store == nil {
		store = &MemoryStore{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

// Logout drops the stored session. Tokens are stateless, so nothing is
// sent to the server.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Session returns the stored session if it is still authenticated. An
// expired session is cleared.
func (c *Client) Session() (*Session, error) {
	s, err := c.store.Load()
	if errors.Is(err, ErrNoSession) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	if !s.Authenticated(c.now()) {
		_ = c.store.Clear()
		return nil, ErrNotAuthenticated
	}
	return s, nil
}

// CurrentUser fetches the profile behind the stored token. A 401 clears the
// session.
func (c *Client) CurrentUser(ctx context.Context) (*Profile, error) {
	s, err := c.Session()
	if err != nil {
		return nil, err
	}

	var data struct {
		User Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/getuser", nil, s.Token, &data); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			_ = c.store.Clear()
		}
		return nil, err
	}

	s.User.ID = data.User.ID
	s.User.Name = data.User.Name
	s.User.Email = data.User.Email
	s.User.Role = data.User.Role
	if err := c.store.Save(s); err != nil {
		return nil, err
	}
	return &data.User, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var data authData
	if err := c.do(ctx, http.MethodPost, path, body, "", &data); err != nil {
		return nil, err
	}
	s := &Session{Token: data.Token, ExpiresAt: data.ExpiresAt, User: data.User}
	if err := c.store.Save(s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s %s (status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
