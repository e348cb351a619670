package fetcher

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces page requests by a fixed delay. The first request goes
// out immediately; each later one waits until delay has passed since the
// previous one.
type RateLimiter struct {
	limiter *rate.Limiter
}

func NewRateLimiter(delay time.Duration) *RateLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
