package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

// Do sends a raw request. path is already escaped and is appended to the
// base URL path, so a base of http://host/api and a path of /orders targets
// http://host/api/orders.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, headers http.Header) (*http.Response, error) {
	escaped := strings.TrimRight(c.BaseURL.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}

	u := *c.BaseURL
	u.Path = unescaped
	u.RawPath = escaped
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, vv := range headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	// Ensure correlation id propagated to the backend
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

// envelope is the backend's response wrapper: {"success":..,"message":..,"data":..}.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// call sends in as JSON (when non-nil), authenticates with token (when
// non-empty) and decodes the envelope's data into out (when non-nil).
func (c *Client) call(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	var body io.Reader
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.Name, err)
		}
		body = bytes.NewReader(raw)
		headers.Set("Content-Type", "application/json")
	}
	if token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	var rawQuery string
	if len(query) > 0 {
		rawQuery = query.Encode()
	}

	resp, err := c.Do(ctx, method, path, rawQuery, body, headers)
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", c.Name, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s %s: read body: %w", c.Name, method, path, err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 400 {
				return newAPIError(c.Name, resp.StatusCode, envelope{})
			}
			// not an envelope (e.g. a bare array)
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("%s %s %s: decode body: %w", c.Name, method, path, err)
			}
			return nil
		}
	}

	if resp.StatusCode >= 400 {
		return newAPIError(c.Name, resp.StatusCode, env)
	}
	if env.Success != nil && !*env.Success {
		return newAPIError(c.Name, resp.StatusCode, env)
	}
	if out == nil {
		return nil
	}

	data := []byte(env.Data)
	if env.Success == nil && len(data) == 0 {
		// not wrapped
		data = raw
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s %s: decode data: %w", c.Name, method, path, err)
	}
	return nil
}

// APIError is a non-success answer from the backend.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
}

func newAPIError(service string, status int, env envelope) *APIError {
	msg := env.Message
	if msg == "" {
		msg = env.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Service: service, StatusCode: status, Message: msg}
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the credentials.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// UserMessage picks the text shown to the shopper: the backend message when
// there is one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Message != http.StatusText(apiErr.StatusCode) {
		return apiErr.Message
	}
	return fallback
}
