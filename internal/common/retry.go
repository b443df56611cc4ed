package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryableFunc 一次可重试的调用，返回 nil 表示成功
type RetryableFunc func() error

type retryConfig struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	retryIf      func(error) bool
}

// Option 重试参数
type Option func(*retryConfig)

// WithMaxRetries 首次调用之后最多再重试 n 次，默认 3
func WithMaxRetries(n int) Option {
	return func(c *retryConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithInitialDelay 第一次重试前的等待，默认 1s
func WithInitialDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.initialDelay = d
		}
	}
}

// WithMaxDelay 单次等待上限，默认 30s
func WithMaxDelay(d time.Duration) Option {
	return func(c *retryConfig) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// WithMultiplier 退避倍数，默认 2
func WithMultiplier(m float64) Option {
	return func(c *retryConfig) {
		if m > 0 {
			c.multiplier = m
		}
	}
}

// WithRetryIf 只对 fn 返回 true 的错误重试，其余错误原样返回、不做包装
func WithRetryIf(fn func(error) bool) Option {
	return func(c *retryConfig) {
		if fn != nil {
			c.retryIf = fn
		}
	}
}

// Do 按指数退避执行 fn。
//
// 首次调用立即执行；成功返回 nil。不可重试的错误原样返回。
// 次数用尽时返回 "retry failed after N attempts" 并包装最后一次错误。
// ctx 在等待期间被取消时，返回的错误包装 ctx.Err()，可以用 errors.Is 判断。
//
//	err := common.Do(ctx, call,
//		common.WithMaxRetries(2),
//		common.WithRetryIf(isServerError),
//	)
func Do(ctx context.Context, fn RetryableFunc, opts ...Option) error {
	if fn == nil {
		return errors.New("retry: function cannot be nil")
	}

	cfg := &retryConfig{
		maxRetries:   3,
		initialDelay: time.Second,
		maxDelay:     30 * time.Second,
		multiplier:   2,
		retryIf:      func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt, err)
			}

			timer := time.NewTimer(calculateDelay(attempt, cfg.initialDelay, cfg.maxDelay, cfg.multiplier))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted during backoff (attempt %d/%d): %w", attempt, cfg.maxRetries, ctx.Err())
			case <-timer.C:
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !cfg.retryIf(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.maxRetries+1, lastErr)
}

// calculateDelay 第 attempt 次重试前的等待: initialDelay * multiplier^(attempt-1)，不超过 maxDelay
func calculateDelay(attempt int, initialDelay, maxDelay time.Duration, multiplier float64) time.Duration {
	delay := float64(initialDelay) * math.Pow(multiplier, float64(attempt-1))
	if delay > float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(delay)
}
