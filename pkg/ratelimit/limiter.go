package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"relay/internal/config"
	"relay/pkg/metrics"
)

// Limiter paces outbound calls to one downstream service. A nil *Limiter
// never blocks.
type Limiter struct {
	name    string
	limiter *rate.Limiter
}

// New returns nil when cfg.RPS is not positive.
func New(name string, cfg config.RateLimitConfig) *Limiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		name:    name,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), burst),
	}
}

// Wait blocks until a call may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	if l.limiter.Allow() {
		metrics.RateLimitRequestsTotal.WithLabelValues(l.name, "allowed").Inc()
		return nil
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		metrics.RateLimitRequestsTotal.WithLabelValues(l.name, "cancelled").Inc()
		return err
	}
	metrics.RateLimitRequestsTotal.WithLabelValues(l.name, "delayed").Inc()
	metrics.RateLimitWaitDuration.WithLabelValues(l.name).Observe(float64(time.Since(start).Milliseconds()))
	return nil
}
