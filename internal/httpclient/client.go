// Package httpclient is the shared HTTP client for feeds and the now-playing
// endpoint.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/tessro/onair/internal/errors"
)

const (
	// DefaultUserAgent is sent when none is configured.
	DefaultUserAgent = "onair/1.0"

	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	// maxBodySize caps response bodies.
	maxBodySize = 8 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// Client performs GET requests with a bounded retry on network errors and 5xx
// responses.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retries    int
	retryWait  time.Duration
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetries sets the retry count and the initial backoff.
func WithRetries(n int, wait time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.retryWait = wait
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  DefaultUserAgent,
		retries:    maxRetries,
		retryWait:  baseRetryWait,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the configured User-Agent.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// HTTP returns the underlying client for streaming requests.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// GetJSON fetches rawURL and decodes the body into result.
func (c *Client) GetJSON(ctx context.Context, rawURL string, result interface{}) error {
	body, err := c.GetBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetBytes fetches rawURL and returns the body.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	c.log.Debug().Str("url", rawURL).Msg("GET")

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			c.log.Debug().Int("attempt", attempt).Dur("wait", wait).AnErr("last", lastErr).Msg("retrying")
			select {
			case <-ctx.Done():
				return nil, contextError(ctx)
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, contextError(ctx)
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				lastErr = fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
			} else {
				lastErr = fmt.Errorf("%w: %v", apperrors.ErrNetworkError, err)
			}
			continue // Retry on network error
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		c.log.Debug().Int("status", resp.StatusCode).Str("url", rawURL).Msg("response")

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = &StatusError{URL: rawURL, Status: resp.StatusCode, Body: string(body)}
			continue
		}

		// Don't retry 4xx errors
		if resp.StatusCode >= 400 {
			return nil, &StatusError{URL: rawURL, Status: resp.StatusCode, Body: string(body)}
		}

		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.retries, lastErr)
}

// contextError maps a finished context to the error callers see. A passed
// deadline is a timeout; cancellation is returned as is.
func contextError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	}
	return err
}
