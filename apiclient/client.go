// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/odr-frontend/metrics"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the content-processing API
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

// New builds a client. rps <= 0 disables rate limiting.
func New(baseURL string, rps float64, timeout time.Duration, m *metrics.Metrics) *Client {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		metrics: m,
	}
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient exposes the transport so tests can intercept it
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// PostFile sends data as the multipart field "file" and decodes the JSON reply
func (c *Client) PostFile(ctx context.Context, endpoint, filename string, data []byte) (map[string]any, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, apiError(endpoint, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, apiError(endpoint, err)
	}
	if err := mw.Close(); err != nil {
		return nil, apiError(endpoint, err)
	}

	var out map[string]any
	err = c.do(ctx, endpoint, mw.FormDataContentType(), &body, &out)
	return out, err
}

// PostJSON sends body as JSON and decodes the reply into out (if non-nil)
func (c *Client) PostJSON(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apiError(endpoint, err)
	}
	slog.Debug("sending data to API", "endpoint", endpoint, "bytes", len(payload))
	return c.do(ctx, endpoint, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, body io.Reader, out any) (err error) {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	defer func() { c.metrics.IncRemoteAPICall(path, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return apiError(endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return apiError(endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("API call failed", "endpoint", endpoint, "error", err)
		return apiError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		slog.Error("API call returned error status", "endpoint", endpoint, "status", resp.StatusCode)
		return apiError(endpoint, &StatusError{Code: resp.StatusCode})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apiError(endpoint, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// StatusError carries the HTTP status of a failed call
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

func apiError(endpoint string, err error) error {
	return fmt.Errorf("API error (%s): %w", endpoint, err)
}

// StatusCode extracts the HTTP status from err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
