package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultPolicy(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2, JitterFraction: 0}
	calls := 0
	err := Do(context.Background(), p, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 503}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonTransient(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	calls := 0
	err := Do(context.Background(), p, func() error {
		calls++
		return &HTTPError{StatusCode: 400}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	calls := 0
	err := Do(context.Background(), p, func() error {
		calls++
		return &HTTPError{StatusCode: 500}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_CancellationAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, p, func() error {
		return &HTTPError{StatusCode: 500}
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDefaultIsTransient(t *testing.T) {
	assert.False(t, DefaultIsTransient(nil))
	assert.False(t, DefaultIsTransient(context.Canceled))
	assert.True(t, DefaultIsTransient(&HTTPError{StatusCode: 503}))
	assert.True(t, DefaultIsTransient(&HTTPError{StatusCode: 429}))
	assert.False(t, DefaultIsTransient(&HTTPError{StatusCode: 404}))
}
