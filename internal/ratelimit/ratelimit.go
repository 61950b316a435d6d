// Package ratelimit throttles calls to upstreams that publish a per-minute quota.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter spreads a per-minute quota evenly and lets a tenth of it through
// as a burst. A nil *Limiter is unlimited.
type Limiter struct {
	bucket *rate.Limiter
}

// New returns a Limiter admitting perMinute calls per minute.
func New(perMinute int) *Limiter {
	burst := max(perMinute/10, 1)
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst),
	}
}

// Wait blocks until the next call may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}
