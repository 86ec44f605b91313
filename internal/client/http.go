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

// maxBodySize caps how much of a response body is read.
const maxBodySize = 16 << 20

// Error is the single transport error class: the request produced no usable JSON.
type Error struct {
	Method     string
	URL        string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the request was aborted by its deadline.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// HTTPClient performs JSON requests over HTTP
type HTTPClient struct {
	httpClient *http.Client
	timeout    time.Duration
	headers    map[string]string
}

// NewHTTPClient creates a new HTTP transport. headers are sent with every request
// and may be overridden per call.
func NewHTTPClient(timeout time.Duration, headers map[string]string) *HTTPClient {
	if timeout == 0 {
		timeout = DefaultQueryTimeout
	}

	return &HTTPClient{
		httpClient: &http.Client{},
		timeout:    timeout,
		headers:    headers,
	}
}

// Request sends one request and decodes the JSON body. A zero timeout uses the
// client default. An empty body decodes to an empty map.
func (c *HTTPClient) Request(ctx context.Context, method, url string, body any, headers map[string]string, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fail := func(status int, err error, format string, args ...any) (any, error) {
		return nil, &Error{
			Method:     method,
			URL:        url,
			StatusCode: status,
			Message:    fmt.Sprintf(format, args...),
			Err:        err,
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(0, err, "failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fail(0, err, "failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(0, context.DeadlineExceeded, "timed out after %s", timeout)
		}
		return fail(0, err, "request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fail(resp.StatusCode, err, "failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, nil, "http %d: %s", resp.StatusCode, snippet(data))
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fail(resp.StatusCode, err, "failed to decode response: %v", err)
	}
	return decoded, nil
}

// snippet shortens a response body for error messages.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "empty body"
	}
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
