// Package backend is the HTTP client for the landmark backend: the landmark
// search endpoint and the favorites endpoints of the authenticated user.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Endpoint paths exposed by the landmark backend.
const (
	EndpointLandmarks      = "/get_landmarks"
	EndpointAddFavorite    = "/add_favorite"
	EndpointRemoveFavorite = "/remove_favorite"
	EndpointFavorites      = "/get_favorites"
)

// SessionCookie is the cookie carrying the authenticated session.
const SessionCookie = "session"

// Common errors for the backend client.
var (
	ErrMalformedPayload = errors.New("backend returned a malformed payload")
	ErrRejected         = errors.New("backend rejected the request")
	ErrUnauthorized     = errors.New("backend requires an authenticated session")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the settings used by NewClient.
type Config struct {
	BaseURL   string        // BaseURL is the scheme and host of the backend.
	Session   string        // Session is the opaque session cookie value; empty means anonymous.
	Timeout   time.Duration // Timeout bounds every request.
	RateLimit int           // RateLimit is the request budget per second; 0 disables limiting.
	Logger    *slog.Logger  // Logger for the client.
}

// Client talks to the landmark backend.
type Client struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL *url.URL      // Base URL of the backend
	session string        // Session cookie value
	limiter *rate.Limiter // Outgoing request limiter
	log     *slog.Logger  // Logger for logging operations
}

// NewClient creates a backend client with its own http.Client.
func NewClient(cfg Config) (*Client, error) {
	const defaultTimeout = 10 * time.Second
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg.BaseURL, cfg.Session, limiter, cfg.Logger)
}

// NewClientWithHTTP creates a backend client with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewClientWithHTTP(
	client HTTPClient,
	baseURL string,
	session string,
	limiter *rate.Limiter,
	log *slog.Logger,
) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute: %q", baseURL)
	}

	return &Client{
		client:  client,
		baseURL: parsed,
		session: session,
		limiter: limiter,
		log:     log,
	}, nil
}

// HasSession reports whether the client sends an authenticated session.
func (c *Client) HasSession() bool {
	return c.session != ""
}

// errorResponse is the error body the backend sends with non-200 statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// StatusError is returned for responses with an unexpected status code.
type StatusError struct {
	Path    string // Path is the endpoint that answered.
	Status  int    // Status is the HTTP status code.
	Message string // Message is the server's error message or the trimmed body.
	Body    []byte // Body is the raw response body.
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// successResponse is the body of the favorite mutation endpoints.
type successResponse struct {
	Success bool `json:"success"`
}

// do sends a request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL.JoinPath(path)
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.session})
	}

	c.log.DebugContext(ctx, "Backend request", "method", method, "url", reqURL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return raw, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", path, ErrUnauthorized)
	default:
		c.log.ErrorContext(ctx, "Backend API error", "path", path, "status", resp.StatusCode, "body", string(raw))
		statusErr := &StatusError{Path: path, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw)), Body: raw}
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			statusErr.Message = apiErr.Error
		}
		return nil, statusErr
	}
}

// mutate posts a favorite mutation and checks its success flag.
func (c *Client) mutate(ctx context.Context, path string, payload any) error {
	raw, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}

	var result successResponse
	if err = json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	if !result.Success {
		return fmt.Errorf("%s: %w", path, ErrRejected)
	}

	return nil
}
