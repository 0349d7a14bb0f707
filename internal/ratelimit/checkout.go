package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/reelforge/reelforge/internal/config"
)

const (
	keyCheckoutUser = "checkout:user:%s"
	keyWebhook      = "webhook:provider:%s"
)

// CheckoutLimiter throttles checkout session creation per user and webhook
// ingestion per provider. Limits come from the hot-reloadable pricing
// config, so every Allow call reads the current snapshot.
type CheckoutLimiter struct {
	enabled bool
	bucket  *TokenBucket
	pricing *config.PricingConfigHolder
}

func NewCheckoutLimiter(cfg config.Config, pricing *config.PricingConfigHolder) (*CheckoutLimiter, error) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &CheckoutLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		pricing: pricing,
	}, nil
}

func (l *CheckoutLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *CheckoutLimiter) AllowCheckout(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	limit := l.pricing.Get().CheckoutRateLimit
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCheckoutUser, strings.TrimSpace(userID)), limit.RefillRate, limit.Capacity)
}

func (l *CheckoutLimiter) AllowWebhook(ctx context.Context, provider string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	limit := l.pricing.Get().WebhookRateLimit
	return l.bucket.Allow(ctx, fmt.Sprintf(keyWebhook, strings.TrimSpace(provider)), limit.RefillRate, limit.Capacity)
}
