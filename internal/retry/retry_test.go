package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	}, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetriesThenSucceeds(t *testing.T) {
	// Fails exactly k=2 times, then succeeds on the third attempt.
	calls := 0
	start := time.Now()
	base := 10 * time.Millisecond

	got, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls <= 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, 5, base)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)

	// Two delays: base*1 + base*2 = 30ms.
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	errFinal := errors.New("attempt 3 failed")

	_, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 3 {
			return "", errFinal
		}
		return "", errors.New("earlier failure")
	}, 3, time.Millisecond)

	require.Error(t, err)
	assert.Equal(t, errFinal, err)
	assert.Equal(t, 3, calls)
}

func TestNoDelayAfterFinalAttempt(t *testing.T) {
	base := 50 * time.Millisecond
	start := time.Now()

	_, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("always fails")
	}, 1, base)

	require.Error(t, err)
	// Single attempt means zero delays.
	assert.Less(t, time.Since(start), base)
}

func TestContextCancelAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("fail")
		}, 10, time.Hour)
		done <- err
	}()

	// Let the first attempt fail and the backoff wait begin.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retry loop did not abort on cancellation")
	}
}
