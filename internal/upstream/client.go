// internal/upstream/client.go
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/clanker-launchpad/internal/utils/metrics"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultRetryInterval  = 300 * time.Millisecond
	maxErrorBody          = 512
)

// Error is a non-2xx answer from a third-party API.
type Error struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Temporary reports whether repeating the request may succeed.
func (e *Error) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// RequestFunc builds a fresh request for every attempt.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Client performs JSON requests against external APIs with retries on
// 5xx, 429 and transport errors.
type Client struct {
	http          *http.Client
	logger        *zap.Logger
	metrics       *metrics.Collector
	retries       int
	retryInterval time.Duration
}

// NewHTTPClient returns the pooled client shared by all upstream services.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func New(httpClient *http.Client, retries int, logger *zap.Logger, collector *metrics.Collector) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{
		http:          httpClient,
		logger:        logger.Named("upstream"),
		metrics:       collector,
		retries:       retries,
		retryInterval: defaultRetryInterval,
	}
}

// WithRetryInterval overrides the first backoff step.
func (c *Client) WithRetryInterval(d time.Duration) *Client {
	clone := *c
	clone.retryInterval = d
	return &clone
}

// DoJSON sends the request built by build and decodes a 2xx body into out.
// out may be nil to discard the body.
func (c *Client) DoJSON(ctx context.Context, service string, build RequestFunc, out interface{}) error {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = c.retryInterval
	backoffPolicy.MaxInterval = c.retryInterval * 10

	notify := func(err error, duration time.Duration) {
		c.logger.Warn("Upstream request failed, retrying",
			zap.String("service", service),
			zap.Error(err),
			zap.Duration("backoff", duration))
	}

	operation := func() (struct{}, error) {
		err := c.metrics.MeasureUpstream(service, func() error {
			return c.once(ctx, service, build, out)
		})
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(uint(c.retries+1)),
		backoff.WithNotify(notify))
	return err
}

func (c *Client) once(ctx context.Context, service string, build RequestFunc, out interface{}) error {
	req, err := build(ctx)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("%s: create request: %w", service, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("%s: execute request: %w", service, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Upstream request completed",
		zap.String("service", service),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upErr := &Error{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
		if upErr.Temporary() {
			return upErr
		}
		return backoff.Permanent(upErr)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("%s: decode response: %w", service, err))
	}
	return nil
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var upErr *Error
	if errors.As(err, &upErr) {
		return upErr, true
	}
	return nil, false
}
