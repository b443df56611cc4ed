package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	tests := []struct {
		name             string
		failUntilN       int
		maxRetries       int
		expectedAttempts int
		shouldSucceed    bool
	}{
		{name: "第二次成功", failUntilN: 2, maxRetries: 3, expectedAttempts: 2, shouldSucceed: true},
		{name: "最后一次重试成功", failUntilN: 4, maxRetries: 3, expectedAttempts: 4, shouldSucceed: true},
		{name: "全部失败", failUntilN: 10, maxRetries: 3, expectedAttempts: 4, shouldSucceed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func() error {
				attempts++
				if attempts < tt.failUntilN {
					return errors.New("temporary failure")
				}
				return nil
			}, WithMaxRetries(tt.maxRetries), WithInitialDelay(time.Millisecond))

			if tt.shouldSucceed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "retry failed after 4 attempts")
			}
			assert.Equal(t, tt.expectedAttempts, attempts)
		})
	}
}

func TestDo_RetryIfStopsOnPermanentError(t *testing.T) {
	permanent := NewError(ErrCodeAuthRequired, "需要认证")
	attempts := 0

	err := Do(context.Background(), func() error {
		attempts++
		return permanent
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return !IsCode(err, ErrCodeAuthRequired) }),
	)

	assert.Equal(t, 1, attempts)
	assert.Same(t, permanent, err)
}

func TestDo_RetryIfRetriesTransientThenStops(t *testing.T) {
	transient := errors.New("502 bad gateway")
	permanent := NewError(ErrCodeInvalidQuery, "查询语法错误")
	attempts := 0

	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return transient
		}
		return permanent
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return errors.Is(err, transient) }),
	)

	assert.Equal(t, 3, attempts)
	assert.True(t, IsCode(err, ErrCodeInvalidQuery))
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errors.New("always fails")
	}, WithInitialDelay(100*time.Millisecond), WithMaxRetries(5))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestDo_ContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Do(ctx, func() error {
		return errors.New("always fails")
	}, WithInitialDelay(30*time.Millisecond), WithMaxRetries(10))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)
	assert.EqualError(t, err, "retry: function cannot be nil")
}

func TestDo_ZeroRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return errors.New("fail")
	}, WithMaxRetries(0))

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_ErrorWrapping(t *testing.T) {
	originalErr := errors.New("original error")

	err := Do(context.Background(), func() error {
		return originalErr
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, originalErr)
	assert.Contains(t, err.Error(), "retry failed after 3 attempts")
}

func TestDo_InvalidOptions(t *testing.T) {
	// 非法参数被忽略，使用默认值
	err := Do(context.Background(), func() error {
		return nil
	},
		WithMaxRetries(-1),
		WithInitialDelay(-1),
		WithMaxDelay(-1),
		WithMultiplier(-1),
		WithRetryIf(nil),
	)

	assert.NoError(t, err)
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name         string
		attempt      int
		initialDelay time.Duration
		maxDelay     time.Duration
		multiplier   float64
		expected     time.Duration
	}{
		{"first retry", 1, 100 * time.Millisecond, time.Second, 2.0, 100 * time.Millisecond},
		{"second retry", 2, 100 * time.Millisecond, time.Second, 2.0, 200 * time.Millisecond},
		{"third retry", 3, 100 * time.Millisecond, time.Second, 2.0, 400 * time.Millisecond},
		{"capped at max delay", 5, 100 * time.Millisecond, 500 * time.Millisecond, 2.0, 500 * time.Millisecond},
		{"multiplier of 1.5", 2, 100 * time.Millisecond, time.Second, 1.5, 150 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calculateDelay(tt.attempt, tt.initialDelay, tt.maxDelay, tt.multiplier))
		})
	}
}

func TestDo_CanceledBeforeRetryWrapsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errors.New("boom")
	}, WithInitialDelay(time.Millisecond))

	// 首次调用不检查 ctx，之后立即放弃
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "retry aborted after 1 attempts")
}

func TestCalculateDelay_CapsHugeExponent(t *testing.T) {
	assert.Equal(t, time.Minute, calculateDelay(200, time.Second, time.Minute, 10))
}
