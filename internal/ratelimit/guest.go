package ratelimit

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/docbrief/docbrief/internal/config"
	"github.com/docbrief/docbrief/internal/observability/metrics"
)

// GuestUploadLimiter throttles anonymous uploads per client IP. When rate
// limiting is disabled in config every request passes through.
type GuestUploadLimiter struct {
	bucket  *TokenBucket
	rate    float64
	burst   int
	metrics *metrics.Metrics
	log     *zap.Logger
	enabled bool
}

type GuestLimiterParams struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Bucket  *TokenBucket     `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

func NewGuestUploadLimiter(p GuestLimiterParams) *GuestUploadLimiter {
	enabled := p.Config.RateLimit.Enabled && p.Bucket != nil
	if p.Config.RateLimit.Enabled && p.Bucket == nil {
		p.Log.Warn("rate limiting enabled but redis is not configured, guest uploads are unthrottled")
	}
	return &GuestUploadLimiter{
		bucket:  p.Bucket,
		rate:    p.Config.RateLimit.GuestRate,
		burst:   p.Config.RateLimit.GuestBurst,
		metrics: p.Metrics,
		log:     p.Log.Named("ratelimit.guest"),
		enabled: enabled,
	}
}

// Allow reports whether the given client may upload now. Redis errors fail
// open so a cache outage does not take guest uploads down with it.
func (l *GuestUploadLimiter) Allow(ctx context.Context, clientIP string) (*Result, error) {
	if l == nil || !l.enabled || clientIP == "" {
		return &Result{Allowed: true}, nil
	}

	key := fmt.Sprintf("ratelimit:guest:%s", clientIP)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request",
			zap.String("client_ip", clientIP),
			zap.Error(err),
		)
		return &Result{Allowed: true}, nil
	}

	if res.Allowed {
		l.metrics.RecordRateLimitAllowed(ctx, "documents.guest")
	} else {
		l.metrics.RecordRateLimitDenied(ctx, "documents.guest", "client-rate")
	}
	return res, nil
}
