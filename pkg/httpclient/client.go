// Package httpclient provides a retrying HTTP client and a circuit breaker
// wrapper for calls to external dependencies such as the JWKS endpoint.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Config controls timeouts, the retry budget and connection pooling.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int
}

// DefaultConfig returns settings tuned for low-volume outbound calls to
// identity providers.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    time.Second,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	}
}

// Client retries transient failures with capped exponential backoff on top
// of a pooled http.Transport.
type Client struct {
	inner *http.Client
	cfg   Config
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &Client{
		inner: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
				MaxConnsPerHost:       cfg.MaxConnsPerHost,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		},
		cfg: cfg,
	}
}

// backoff returns the wait before retry attempt n (1-based), doubling from
// RetryWaitMin and capped at RetryWaitMax.
func (c *Client) backoff(attempt int) time.Duration {
	wait := c.cfg.RetryWaitMin << uint(attempt-1)
	if wait > c.cfg.RetryWaitMax || wait <= 0 {
		return c.cfg.RetryWaitMax
	}
	return wait
}

// Do executes req, retrying transport errors and retryable 5xx responses
// until the retry budget is spent. A 501 is never retried since the server
// explicitly does not implement the method.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.inner.Do(req)
		switch {
		case err != nil:
			lastErr = err
			if isRetryableError(err) && attempt < attempts {
				continue
			}
			return nil, fmt.Errorf("http request failed after %d attempts: %w", attempt, err)
		case resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented && attempt < attempts:
			resp.Body.Close()
		default:
			return resp, nil
		}
	}

	return nil, fmt.Errorf("http request failed after %d attempts: %w", attempts, lastErr)
}

// Get issues a GET through the retry loop.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// isRetryableError reports whether a transport error is worth another
// attempt. Context cancellation never is, since the caller gave up.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
