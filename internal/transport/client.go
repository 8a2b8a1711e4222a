package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 60 * time.Second
	maxAttempts    = 5
	initialBackoff = 1 * time.Second
)

// StatusError is returned for non-retryable HTTP responses. Body carries the
// full response payload so destination rejections can be diagnosed.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// Client performs HTTP requests with exponential backoff retry on transport
// failures (connection errors, 5xx, 429). Client errors (other 4xx) are
// returned immediately as a StatusError.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
}

// NewClient creates a retrying client. The headers are attached to every
// request.
func NewClient(headers map[string]string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		headers: headers,
	}
}

// Get fetches url and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// Post sends a JSON body to url and returns the response body.
func (c *Client) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

// Patch sends a JSON body to url and returns the response body.
func (c *Client) Patch(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPatch, url, body)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range c.headers {
			req.Header.Set(key, value)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: respBody}
			continue
		default:
			// 4xx other than 429 will not improve with retries.
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: respBody}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
