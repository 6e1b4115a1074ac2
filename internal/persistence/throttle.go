package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleKeyPrefix = "expense-share:login-failures:"

// LoginThrottle counts consecutive failed logins per username in Redis.
// Counters decay after the configured window; a successful login clears
// them. Implements service.LoginThrottle.
type LoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLoginThrottle builds a throttle backed by the shared Redis client.
func NewLoginThrottle(r *Redis, limit int, window time.Duration) *LoginThrottle {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &LoginThrottle{client: client, limit: limit, window: window}
}

// TooMany reports whether the username has exhausted its failure budget.
func (t *LoginThrottle) TooMany(ctx context.Context, username string) (bool, error) {
	if t.client == nil || t.limit <= 0 {
		return false, nil
	}
	count, err := t.client.Get(ctx, throttleKeyPrefix+username).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= t.limit, nil
}

// RecordFailure increments the counter and refreshes its expiry.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) error {
	if t.client == nil {
		return nil
	}
	key := throttleKeyPrefix + username
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	_, err := pipe.Exec(ctx)
	return err
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	if t.client == nil {
		return nil
	}
	return t.client.Del(ctx, throttleKeyPrefix+username).Err()
}
