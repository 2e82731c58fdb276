// Package tmsapi is the HTTP client for the TMS admin REST API.
package tmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"transit-admin/internal/domain"
	"transit-admin/internal/metrics"
)

// Sentinel errors handlers branch on.
var (
	// ErrUnauthorized means the bearer token is missing, invalid, or
	// expired. Handlers respond by clearing the session and redirecting
	// to the login page.
	ErrUnauthorized = errors.New("tmsapi: unauthorized")

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("tmsapi: not found")
)

// APIError is a non-2xx upstream response that is neither an auth
// failure nor a missing record. Fields carries per-field messages when
// the API rejects a submitted document.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tmsapi: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("tmsapi: unexpected status %d", e.StatusCode)
}

// Credentials is the result of a successful login.
type Credentials struct {
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListOptions narrows a user listing.
type ListOptions struct {
	Search   string
	Page     int
	PageSize int
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users    []domain.User `json:"users"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
}

// Client is the surface of the TMS API the console depends on.
type Client interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	GetUser(ctx context.Context, token, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, token, id string, update domain.UserUpdate) (*domain.User, error)
	ListUsers(ctx context.Context, token string, opts ListOptions) (*UserPage, error)
	Ping(ctx context.Context) error
}

// HTTPClient talks to the TMS API over HTTP. Calls never retry; a
// failure is terminal for the current action.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an HTTPClient for the API at baseURL. Every call is
// bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges admin credentials for a bearer token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("tmsapi: encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tmsapi: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, "login")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("tmsapi: decode login response: %w", err)
	}
	return &creds, nil
}

// GetUser loads a single user record by id.
func (c *HTTPClient) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("tmsapi: build get user request: %w", err)
	}
	setBearer(req, token)

	resp, err := c.do(req, "get_user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("tmsapi: decode user response: %w", err)
	}
	return &user, nil
}

// UpdateUser replaces the editable attributes of a user record and
// returns the updated record.
func (c *HTTPClient) UpdateUser(ctx context.Context, token, id string, update domain.UserUpdate) (*domain.User, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("tmsapi: encode user update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.userURL(id), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tmsapi: build update user request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	resp, err := c.do(req, "update_user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("tmsapi: decode user response: %w", err)
	}
	return &user, nil
}

// ListUsers fetches one page of user records.
func (c *HTTPClient) ListUsers(ctx context.Context, token string, opts ListOptions) (*UserPage, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	endpoint := c.baseURL + "/api/admin/users"
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tmsapi: build list users request: %w", err)
	}
	setBearer(req, token)

	resp, err := c.do(req, "list_users")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var page UserPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("tmsapi: decode user page: %w", err)
	}
	return &page, nil
}

// Ping checks that the API is reachable. Used by the readiness probes.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("tmsapi: build health request: %w", err)
	}

	resp, err := c.do(req, "health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// do runs the request and records upstream metrics for it.
func (c *HTTPClient) do(req *http.Request, endpoint string) (*http.Response, error) {
	metrics.StartUpstreamCall(endpoint)
	timer := metrics.NewTimer()

	resp, err := c.http.Do(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.EndUpstreamCall(endpoint, req.Method, status, timer.Elapsed())

	if err != nil {
		return nil, fmt.Errorf("tmsapi: %s: %w", endpoint, err)
	}
	return resp, nil
}

func (c *HTTPClient) userURL(id string) string {
	return c.baseURL + "/api/admin/users/" + url.PathEscape(id)
}

func setBearer(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// errorResponse is the error envelope the API returns for non-2xx
// statuses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusError maps a non-2xx response to the errors handlers branch on.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
	}
	return apiErr
}
