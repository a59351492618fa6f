package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGeminiService_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiService("", "gemini-2.5-flash", time.Second)
	assert.Error(t, err)
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	calls := 0
	result, err := retryWithBackoff(context.Background(), policy, zap.NewNop(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("model overloaded")
		}
		return `{"ok":true}`, nil
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, result)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	lastErr := errors.New("quota exceeded")

	calls := 0
	_, err := retryWithBackoff(context.Background(), policy, zap.NewNop(), func(ctx context.Context) (string, error) {
		calls++
		return "", lastErr
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, lastErr)
}

func TestRetryWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, err := retryWithBackoff(context.Background(), RetryPolicy{}, zap.NewNop(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("fail")
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	_, err := retryWithBackoff(ctx, policy, zap.NewNop(), func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("fail")
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
}
