// Package retry paces reconnect attempts against Redis and PostgreSQL.
// Commands themselves are never redelivered.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Retrier computes exponential backoff with jitter and optionally drives a
// bounded retry loop.
type Retrier struct {
	maxAttempts int
	initial     time.Duration
	max         time.Duration
	multiplier  float64
	jitter      float64
	retryIf     func(error) bool
	onRetry     func(attempt int, err error, delay time.Duration)
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithMaxAttempts bounds Do, counting the first attempt. Default: 3.
func WithMaxAttempts(n int) Option {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithInitialDelay sets the delay after the first failure. Default: 100ms.
func WithInitialDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d > 0 {
			r.initial = d
		}
	}
}

// WithMaxDelay caps the delay before jitter. Default: 30s.
func WithMaxDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d > 0 {
			r.max = d
		}
	}
}

// WithMultiplier sets the growth factor between attempts. Default: 2.
func WithMultiplier(m float64) Option {
	return func(r *Retrier) {
		if m >= 1 {
			r.multiplier = m
		}
	}
}

// WithJitter spreads each delay uniformly by up to ±j of its value.
// Default: 0.1.
func WithJitter(j float64) Option {
	return func(r *Retrier) {
		if j >= 0 && j <= 1 {
			r.jitter = j
		}
	}
}

// WithRetryIf decides which errors Do retries. By default everything but
// context cancellation and deadline errors is retried.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) {
		if fn != nil {
			r.retryIf = fn
		}
	}
}

// WithOnRetry is called before each sleep in Do.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// New creates a Retrier.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		maxAttempts: 3,
		initial:     100 * time.Millisecond,
		max:         30 * time.Second,
		multiplier:  2,
		jitter:      0.1,
		retryIf:     notContextError,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// QueueRetrier paces a listener that lost its Redis connection. Only its
// Backoff is used, so there is no attempt limit to tune.
func QueueRetrier() *Retrier {
	return New(
		WithInitialDelay(200*time.Millisecond),
		WithMaxDelay(10*time.Second),
		WithJitter(0.2),
	)
}

// Do runs op until it succeeds, returns an error retryIf rejects, or the
// attempts run out. The last error is returned unchanged. A cancelled ctx
// ends the wait early.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if attempt >= r.maxAttempts || !r.retryIf(err) {
			return err
		}

		delay := r.Backoff(attempt)
		if r.onRetry != nil {
			r.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (r *Retrier) Backoff(attempt int) time.Duration {
	d := r.initial
	for i := 1; i < attempt && d < r.max; i++ {
		d = time.Duration(float64(d) * r.multiplier)
	}
	d = min(d, r.max)

	if r.jitter > 0 {
		spread := (rand.Float64()*2 - 1) * r.jitter
		d += time.Duration(spread * float64(d))
	}
	return max(d, 0)
}

func notContextError(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
