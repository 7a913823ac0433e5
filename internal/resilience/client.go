package resilience

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/model-o-meter/internal/apperrors"
	"github.com/ZanzyTHEbar/model-o-meter/internal/ratelimit"
)

// Client is the outbound HTTP client the adapters share: pooled transport,
// per-host rate limiting, circuit breaking and retry with backoff.
type Client struct {
	http    *http.Client
	breaker *CircuitBreaker
	limiter *ratelimit.HostLimiter
	retry   RetryConfig
}

// NewClient builds a resilient client. A nil limiter disables client-side
// rate limiting.
func NewClient(limiter *ratelimit.HostLimiter) *Client {
	transport := &http.Transport{
		MaxIdleConns:          20,
		MaxConnsPerHost:       10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		breaker: NewCircuitBreaker(CircuitBreakerConfig{}),
		limiter: limiter,
		retry:   DefaultRetryConfig(),
	}
}

// Get performs a GET with rate limiting, circuit breaking and retry.
// Server-side failures (5xx) are retried; any other response is handed to
// the caller for interpretation.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response

	err := Retry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("build request for %s: %v", url, err))
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
				return apperrors.NewTimeoutError("rate limiter wait cancelled", err)
			}
		}

		return c.breaker.Call(func() error {
			r, err := c.http.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return apperrors.NewTimeoutError("request cancelled", err)
				}
				return apperrors.NewNetworkError(fmt.Sprintf("GET %s failed", url), err)
			}
			if r.StatusCode >= http.StatusInternalServerError {
				r.Body.Close()
				return apperrors.NewExternalAPIError(fmt.Sprintf("GET %s: status %d", url, r.StatusCode), nil)
			}
			resp = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// BreakerState exposes the circuit state for health reporting.
func (c *Client) BreakerState() CircuitState {
	return c.breaker.State()
}
