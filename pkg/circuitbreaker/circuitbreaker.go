// Package circuitbreaker stops journal writes from piling up against a
// database that is down. Command processing never waits on an open circuit:
// callers get ErrCircuitOpen immediately and move on.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker position. The numeric values are exported as the
// depthchart_journal_circuit_state gauge.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned without calling the guarded function, either
// because the cooldown has not elapsed or because a trial call is already
// in flight.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker opens after a run of consecutive failures. Once the
// cooldown has passed, exactly one trial call is let through: its success
// closes the circuit, its failure restarts the cooldown.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time
	onChange  func(name string, from, to State)
	isFailure func(error) bool

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
// Default: 5.
func WithFailureThreshold(n int) Option {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.threshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open before a trial call.
// Default: 30s.
func WithCooldown(d time.Duration) Option {
	return func(cb *CircuitBreaker) {
		if d > 0 {
			cb.cooldown = d
		}
	}
}

// WithOnStateChange registers a transition callback. It runs with the
// breaker locked and must not call back into it.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(cb *CircuitBreaker) {
		cb.onChange = fn
	}
}

// WithIsFailure decides which errors count against the circuit. Errors it
// rejects are still returned to the caller.
func WithIsFailure(fn func(error) bool) Option {
	return func(cb *CircuitBreaker) {
		if fn != nil {
			cb.isFailure = fn
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) {
		if now != nil {
			cb.now = now
		}
	}
}

// New creates a closed breaker.
func New(name string, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:      name,
		threshold: 5,
		cooldown:  30 * time.Second,
		now:       time.Now,
		isFailure: func(err error) bool { return err != nil },
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// JournalBreaker guards command journal inserts. Shutdown cancellation does
// not count as a database failure.
func JournalBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New("command-journal",
		WithFailureThreshold(3),
		WithCooldown(10*time.Second),
		WithOnStateChange(onStateChange),
		WithIsFailure(func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}),
	)
}

// Execute calls fn unless the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	trial, err := cb.admit()
	if err != nil {
		return err
	}
	err = fn(ctx)
	cb.record(trial, err)
	return err
}

func (cb *CircuitBreaker) admit() (trial bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return false, nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false, ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
	}
	if cb.trial {
		return false, ErrCircuitOpen
	}
	cb.trial = true
	return true, nil
}

func (cb *CircuitBreaker) record(trial bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial {
		cb.trial = false
	}
	if !cb.isFailure(err) {
		cb.failures = 0
		if trial {
			cb.transition(StateClosed)
		}
		return
	}

	cb.failures++
	if trial || cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if to == StateClosed {
		cb.failures = 0
	}
	if cb.onChange != nil {
		cb.onChange(cb.name, from, to)
	}
}

// State returns the current position.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Name returns the breaker name used in logs and metrics.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}
