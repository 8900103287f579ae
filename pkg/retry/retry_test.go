package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = errors.New("connection refused")

func fast(opts ...Option) *Retrier {
	base := []Option{WithInitialDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond), WithJitter(0)}
	return New(append(base, opts...)...)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	var retried []int

	r := fast(WithMaxAttempts(5), WithOnRetry(func(attempt int, err error, _ time.Duration) {
		assert.ErrorIs(t, err, errRefused)
		retried = append(retried, attempt)
	}))
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errRefused
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ReturnsLastErrorWhenAttemptsRunOut(t *testing.T) {
	attempts := 0

	err := fast(WithMaxAttempts(4)).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errRefused
	})

	assert.Equal(t, errRefused, err)
	assert.Equal(t, 4, attempts)
}

func TestDo_RetryIfStopsEarly(t *testing.T) {
	attempts := 0
	errAuth := errors.New("WRONGPASS")

	r := fast(WithMaxAttempts(5), WithRetryIf(func(err error) bool { return !errors.Is(err, errAuth) }))
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errAuth
	})

	assert.ErrorIs(t, err, errAuth)
	assert.Equal(t, 1, attempts)
}

func TestDo_DoesNotRetryCancellationByDefault(t *testing.T) {
	attempts := 0

	err := fast(WithMaxAttempts(5)).Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDo_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	r := New(WithMaxAttempts(5), WithInitialDelay(time.Hour), WithJitter(0))
	err := r.Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return errRefused
	})

	assert.Equal(t, errRefused, err)
	assert.Equal(t, 1, attempts)
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Second),
		WithMultiplier(2),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.Backoff(0))
	assert.Equal(t, 100*time.Millisecond, r.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, r.Backoff(2))
	assert.Equal(t, 800*time.Millisecond, r.Backoff(4))
	assert.Equal(t, time.Second, r.Backoff(10))
	assert.Equal(t, time.Second, r.Backoff(1000))
}

func TestBackoff_JitterStaysInBounds(t *testing.T) {
	r := New(WithInitialDelay(time.Second), WithMaxDelay(time.Second), WithJitter(0.2))

	for i := 0; i < 100; i++ {
		d := r.Backoff(1)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestQueueRetrier_Caps(t *testing.T) {
	d := QueueRetrier().Backoff(50)
	assert.LessOrEqual(t, d, 12*time.Second)
	assert.GreaterOrEqual(t, d, 8*time.Second)
}
