package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/facturador/internal/config"
	"go.uber.org/zap"
)

const (
	keySubmitClient = "facturador:submit:client:%s"
	keySubmitLock   = "facturador:submit:lock:%s"
)

var (
	ErrRateLimited          = errors.New("rate_limited")
	ErrSubmitInProgress     = errors.New("submit_in_progress")
	ErrLimiterNotConfigured = errors.New("submit limiter requires redis")
)

// SubmitLimiter throttles document submissions per client and keeps a
// session from being submitted twice at the same time. A nil limiter allows
// everything.
type SubmitLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
	locker *Locker

	rate    float64
	burst   int
	lockTTL time.Duration
}

func NewSubmitLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) (*SubmitLimiter, error) {
	limitCfg := cfg.SubmitLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if client == nil {
		return nil, ErrLimiterNotConfigured
	}
	if limitCfg.Rate <= 0 || limitCfg.Burst <= 0 {
		return nil, errors.New("submit rate limit must be positive")
	}
	if limitCfg.LockTTL <= 0 {
		return nil, errors.New("submit lock ttl must be positive")
	}

	return &SubmitLimiter{
		log:     log.Named("ratelimit.submit"),
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    limitCfg.Rate,
		burst:   limitCfg.Burst,
		lockTTL: limitCfg.LockTTL,
	}, nil
}

func (l *SubmitLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Acquire reserves a submission slot for sessionID on behalf of clientKey.
// The returned release func must be called once the submission finishes.
// Redis failures fail open.
func (l *SubmitLimiter) Acquire(ctx context.Context, clientKey, sessionID string) (func(), *RateLimitResult, error) {
	noop := func() {}
	if !l.Enabled() {
		return noop, nil, nil
	}

	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		clientKey = "anonymous"
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keySubmitClient, clientKey), l.rate, l.burst)
	if err != nil {
		l.log.Warn("submit rate limit check failed", zap.Error(err))
		return noop, nil, nil
	}
	if !res.Allowed {
		return noop, res, ErrRateLimited
	}

	lockKey := fmt.Sprintf(keySubmitLock, strings.TrimSpace(sessionID))
	token, ok, err := l.locker.TryLock(ctx, lockKey, l.lockTTL)
	if err != nil {
		l.log.Warn("submit lock failed", zap.Error(err))
		return noop, res, nil
	}
	if !ok {
		return noop, res, ErrSubmitInProgress
	}

	release := func() {
		// The request context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := l.locker.Release(releaseCtx, lockKey, token); err != nil {
			l.log.Warn("submit lock release failed", zap.Error(err))
		}
	}
	return release, res, nil
}
