// Package ratelimit provides client-side rate limiting for outbound calls
// to secondary services, so a scoring batch cannot exhaust a shared API
// quota. One limiter per host, explicitly passed and safe for concurrent
// use from every metric in a batch.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config bounds outbound requests per host.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig allows a sustained 10 req/s with a burst of 20 per host,
// comfortably inside the hub and GitHub anonymous quotas.
func DefaultConfig() Config {
	return Config{RequestsPerSecond: 10, Burst: 20}
}

// HostLimiter rate-limits outbound requests per destination host.
type HostLimiter struct {
	config Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewHostLimiter(config Config) *HostLimiter {
	if config.RequestsPerSecond <= 0 {
		config = DefaultConfig()
	}
	return &HostLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	return h.limiterFor(host).Wait(ctx)
}

// Allow reports whether a request to host may proceed right now.
func (h *HostLimiter) Allow(host string) bool {
	return h.limiterFor(host).Allow()
}

func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(h.config.RequestsPerSecond), h.config.Burst)
		h.limiters[host] = l
	}
	return l
}
