// Package httpx provides the HTTP client with retry logic shared by all
// discovery channels and notification sinks. Retry lives here, at the
// I/O boundary: extraction and reconciliation stay pure and synchronous.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

// Error variables for client errors
var (
	// ErrMaxRetriesExceeded is returned when all retry attempts have failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	// ErrRequestTimeout is returned when a request times out
	ErrRequestTimeout = errors.New("request timeout")
)

// envVarPattern matches ${VAR_NAME} syntax for environment variable substitution
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int
	// BaseDelay is the initial delay before first retry (default: 1s)
	BaseDelay time.Duration
	// MaxDelay is the maximum delay between retries (default: 4s)
	MaxDelay time.Duration
	// Timeout is the timeout for each individual request (default: 30s)
	Timeout time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
// Uses exponential backoff with delays of 1s, 2s, 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   4 * time.Second,
		Timeout:    30 * time.Second,
	}
}

// Client wraps an HTTP client with retry logic. Network errors and
// 5xx/429 responses are retried with exponential backoff; any other
// response is returned to the caller as-is.
type Client struct {
	client *http.Client
	config RetryConfig
	// delayFunc allows overriding the delay function for testing
	delayFunc func(time.Duration)
	// recordedDelays stores delays for testing purposes
	recordedDelays []time.Duration
	// defaultHeaders are headers applied to all requests
	defaultHeaders map[string]string
}

// New creates a client with the default retry configuration.
func New() *Client {
	return NewWithConfig(DefaultRetryConfig())
}

// NewWithConfig creates a client with a custom retry configuration.
func NewWithConfig(config RetryConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config:    config,
		delayFunc: time.Sleep,
	}
}

// SetHTTPClient sets a custom underlying HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.client = client
}

// SetDelayFunc sets a custom delay function (useful for testing).
func (c *Client) SetDelayFunc(fn func(time.Duration)) {
	c.delayFunc = fn
}

// RecordedDelays returns the delays applied between retries.
func (c *Client) RecordedDelays() []time.Duration {
	return c.recordedDelays
}

// SetDefaultHeaders sets headers applied to every request. Values are
// processed for ${VAR_NAME} environment variable substitution.
func (c *Client) SetDefaultHeaders(headers map[string]string) {
	c.defaultHeaders = headers
}

// Config returns the current retry configuration.
func (c *Client) Config() RetryConfig {
	return c.config
}

// Do executes an HTTP request with retry logic.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with retry logic and context
// support. It retries on network errors, 5xx responses and 429.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to buffer request body: %w", err)
		}
		body = b
	}

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Apply delay before retry (not on first attempt)
		if attempt > 0 {
			delay := c.calculateDelay(attempt)
			c.recordedDelays = append(c.recordedDelays, delay)
			c.delayFunc(delay)
		}

		reqCopy := req.Clone(ctx)
		if body != nil {
			reqCopy.Body = io.NopCloser(bytes.NewReader(body))
			reqCopy.ContentLength = int64(len(body))
		}

		resp, err := c.client.Do(reqCopy)
		if err != nil {
			lastErr = err
			if isTimeoutError(err) {
				lastErr = fmt.Errorf("%w: %v", ErrRequestTimeout, err)
			}
			continue
		}

		if c.shouldRetry(resp.StatusCode) {
			if resp.Body != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			lastResp = resp
			continue
		}

		return resp, nil
	}

	if lastErr != nil {
		return lastResp, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
	}
	return lastResp, ErrMaxRetriesExceeded
}

// Get performs a GET request with retry logic.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.GetWithHeaders(ctx, url, nil)
}

// GetWithHeaders performs a GET request with custom headers and retry
// logic. Header values are processed for environment variable
// substitution using ${VAR_NAME} syntax.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req, headers)
	return c.DoWithContext(ctx, req)
}

// Head performs a HEAD request. HEAD probes against the installer CDN
// are not retried: a miss is a legitimate outcome and the sweep covers
// thousands of URLs.
func (c *Client) Head(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req, nil)
	return c.client.Do(req)
}

// PostJSON marshals v and POSTs it with an application/json content
// type, applying the retry policy.
func (c *Client) PostJSON(ctx context.Context, url string, v any, headers map[string]string) (*http.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req, headers)
	return c.DoWithContext(ctx, req)
}

// PostForm POSTs urlencoded form values, applying the retry policy.
func (c *Client) PostForm(ctx context.Context, target string, values url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.applyHeaders(req, nil)
	return c.DoWithContext(ctx, req)
}

// applyHeaders applies default headers first, then per-request headers.
// All values are processed for environment variable substitution.
func (c *Client) applyHeaders(req *http.Request, custom map[string]string) {
	for key, value := range c.defaultHeaders {
		req.Header.Set(key, SubstituteEnvVars(value))
	}
	for key, value := range custom {
		req.Header.Set(key, SubstituteEnvVars(value))
	}
}

// calculateDelay calculates the delay for a given retry attempt.
// Uses exponential backoff: delay = baseDelay * 2^(attempt-1)
func (c *Client) calculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	multiplier := 1 << (attempt - 1)
	delay := c.config.BaseDelay * time.Duration(multiplier)

	if delay > c.config.MaxDelay {
		delay = c.config.MaxDelay
	}

	return delay
}

// shouldRetry determines if a request should be retried based on status code.
func (c *Client) shouldRetry(statusCode int) bool {
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}

// isTimeoutError checks if an error is a timeout error.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	type timeoutError interface {
		Timeout() bool
	}
	if te, ok := err.(timeoutError); ok {
		return te.Timeout()
	}
	return false
}

// SubstituteEnvVars replaces ${VAR_NAME} patterns in a string with the
// corresponding environment variable values. Unset variables are
// replaced with an empty string.
func SubstituteEnvVars(value string) string {
	return envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}
