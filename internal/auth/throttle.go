// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/stockroom/internal/platform/constants"
)

// LoginThrottle tracks failed logins per username and locks out names that
// keep failing.
type LoginThrottle interface {
	// Locked reports whether username is locked and for how long.
	Locked(ctx context.Context, username string) (bool, time.Duration, error)

	// RecordFailure counts one failed attempt.
	RecordFailure(ctx context.Context, username string) error

	// Reset forgets all failures for username.
	Reset(ctx context.Context, username string) error
}

// NoopThrottle never locks anyone out. It is used when Redis is not configured.
type NoopThrottle struct{}

func (NoopThrottle) Locked(context.Context, string) (bool, time.Duration, error) {
	return false, 0, nil
}

func (NoopThrottle) RecordFailure(context.Context, string) error { return nil }

func (NoopThrottle) Reset(context.Context, string) error { return nil }

// RedisLoginThrottle keeps a failure counter per username with a sliding
// expiry: every failure pushes the window forward.
type RedisLoginThrottle struct {
	client    redis.Cmdable
	threshold int64
	window    time.Duration
}

// NewRedisLoginThrottle creates a throttle with the default lockout policy.
func NewRedisLoginThrottle(client redis.Cmdable) *RedisLoginThrottle {
	return &RedisLoginThrottle{
		client:    client,
		threshold: constants.LoginFailureThreshold,
		window:    constants.LoginLockoutWindow,
	}
}

func loginFailuresKey(username string) string {
	return constants.RedisPrefixLoginFailures + username
}

// Locked implements [LoginThrottle].
func (throttle *RedisLoginThrottle) Locked(context context.Context, username string) (bool, time.Duration, error) {
	key := loginFailuresKey(username)

	failures, err := throttle.client.Get(context, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("redis_login_throttle_get_failed: %w", err)
	}
	if failures < throttle.threshold {
		return false, 0, nil
	}

	retryAfter, err := throttle.client.TTL(context, key).Result()
	if err != nil || retryAfter <= 0 {
		retryAfter = throttle.window
	}
	return true, retryAfter, nil
}

// RecordFailure implements [LoginThrottle].
func (throttle *RedisLoginThrottle) RecordFailure(context context.Context, username string) error {
	key := loginFailuresKey(username)

	_, err := throttle.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Incr(context, key)
		pipe.Expire(context, key, throttle.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_login_throttle_incr_failed: %w", err)
	}
	return nil
}

// Reset implements [LoginThrottle].
func (throttle *RedisLoginThrottle) Reset(context context.Context, username string) error {
	if err := throttle.client.Del(context, loginFailuresKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_login_throttle_reset_failed: %w", err)
	}
	return nil
}
