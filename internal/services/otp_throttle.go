package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/authsvc/domain"
)

// OTPThrottleImpl implements domain.OTPThrottle using a Redis key per phone.
// SetNX makes the reservation atomic across concurrent requests.
type OTPThrottleImpl struct {
	client *redis.Client
	window time.Duration
}

// NewOTPThrottle creates a Redis-backed OTP resend throttle
func NewOTPThrottle(client *redis.Client, window time.Duration) domain.OTPThrottle {
	return &OTPThrottleImpl{client: client, window: window}
}

// Reserve implements domain.OTPThrottle
func (t *OTPThrottleImpl) Reserve(ctx context.Context, phone string) (time.Duration, error) {
	if t.window <= 0 {
		return 0, nil
	}

	key := "otp:res:" + phone
	ok, err := t.client.SetNX(ctx, key, 1, t.window).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to reserve resend window: %w", err)
	}
	if ok {
		return 0, nil
	}

	ttl, err := t.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check resend TTL: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return ttl, domain.ErrOTPThrottled
}
