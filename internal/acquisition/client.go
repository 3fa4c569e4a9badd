package acquisition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/infrastructure"
)

// StatusError is a non-2xx response from a data source
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Status)
}

// IsRetryable reports whether the request may succeed when repeated
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client performs rate-limited GET requests with retries
type Client struct {
	provider     string
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxRetries   int
	retryBackoff time.Duration
	metrics      *infrastructure.PipelineMetrics
	logger       *slog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request and retry counts
func WithMetrics(m *infrastructure.PipelineMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRetries sets the retry count and the initial backoff
func WithRetries(retries int, initial time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = retries
		c.retryBackoff = initial
	}
}

// NewClient creates a client for provider throttled by cfg
func NewClient(provider string, cfg config.AcquisitionConfig, opts ...ClientOption) *Client {
	c := &Client{
		provider:     provider,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      newLimiter(cfg),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = infrastructure.WithComponent(c.logger, provider+"_client")
	return c
}

func newLimiter(cfg config.AcquisitionConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// newBackOff returns the retry schedule of one Get call: exponential from
// retryBackoff, doubling, with +-50% jitter and no overall deadline
func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBackoff
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxInterval = max(backoff.DefaultMaxInterval, c.retryBackoff)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Get fetches rawURL and returns the response body. 429 and 5xx responses
// are retried with exponential backoff and jitter.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	var lastErr error
	schedule := c.newBackOff()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := schedule.NextBackOff()
			c.logger.DebugContext(ctx, "Retrying request",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", wait),
				slog.String("error", lastErr.Error()))
			c.metrics.RecordAPIRequest(ctx, c.provider, true)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		} else {
			c.metrics.RecordAPIRequest(ctx, c.provider, false)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, rawURL, header)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *StatusError
		if !errors.As(err, &statusErr) || !statusErr.IsRetryable() {
			return nil, apperrors.NewNetworkError(fmt.Sprintf("%s request failed", c.provider), err)
		}
	}

	return nil, apperrors.NewNetworkError(
		fmt.Sprintf("%s request failed after %d retries", c.provider, c.maxRetries), lastErr)
}

func (c *Client) do(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), Body: body}
	}
	return body, nil
}
