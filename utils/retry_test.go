package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithRetryStopsAfterAttemptCap(t *testing.T) {
	calls := 0
	err := WithRetry(3, time.Millisecond, func() error {
		calls++
		return errors.New("network is unreachable")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls, "exactly 3 attempts, then terminal failure")
}

func TestWithRetryReturnsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(3, time.Millisecond, func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversMidway(t *testing.T) {
	calls := 0
	err := WithRetry(3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryDoesNotRetryNonTransientErrors(t *testing.T) {
	calls := 0
	err := WithRetry(3, time.Millisecond, func() error {
		calls++
		return errors.New("record not found")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls, "non-network errors fail immediately")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, IsTransient(errors.New("Network unreachable")))
	assert.True(t, IsTransient(errors.New("failed to fetch session")))
	assert.True(t, IsTransient(errors.New("i/o timeout")))
	assert.False(t, IsTransient(errors.New("record not found")))
	assert.False(t, IsTransient(nil))
}
