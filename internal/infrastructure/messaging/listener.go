package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
	"github.com/depthchart-hub/depth-chart-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// LISTENER
// ══════════════════════════════════════════════════════════════════════════════

// Processor handles one payload to completion.
type Processor interface {
	Process(ctx context.Context, payload []byte) interpreter.Outcome
}

// Binding connects a queue to the processor that consumes it.
type Binding struct {
	Queue     string
	Processor Processor
}

// Listener runs one consumer loop per binding. Bindings are independent:
// a slow or failing queue never blocks the others.
type Listener struct {
	source      Source
	bindings    []Binding
	pollTimeout time.Duration
	backoff     *retry.Retrier
	onError     func(queue string, err error)
	log         *logger.Logger
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithPollTimeout bounds each blocking pop. Default: 5s.
func WithPollTimeout(d time.Duration) ListenerOption {
	return func(l *Listener) {
		if d > 0 {
			l.pollTimeout = d
		}
	}
}

// WithBackoff sets the retrier whose Backoff paces reconnects after
// transport errors. Default: retry.QueueRetrier().
func WithBackoff(r *retry.Retrier) ListenerOption {
	return func(l *Listener) {
		if r != nil {
			l.backoff = r
		}
	}
}

// WithTransportErrorHook is called for every failed pop.
func WithTransportErrorHook(fn func(queue string, err error)) ListenerOption {
	return func(l *Listener) {
		l.onError = fn
	}
}

// WithListenerLogger sets the logger.
func WithListenerLogger(log *logger.Logger) ListenerOption {
	return func(l *Listener) {
		if log != nil {
			l.log = log
		}
	}
}

// NewListener creates a Listener reading from source.
func NewListener(source Source, bindings []Binding, opts ...ListenerOption) *Listener {
	l := &Listener{
		source:      source,
		bindings:    bindings,
		pollTimeout: 5 * time.Second,
		backoff:     retry.QueueRetrier(),
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(logger.Component("listener"))
	return l
}

// Run consumes every bound queue until ctx is cancelled. It returns nil on
// cancellation and an error only for an invalid setup.
func (l *Listener) Run(ctx context.Context) error {
	if len(l.bindings) == 0 {
		return errors.New("listener: no queues bound")
	}
	for _, b := range l.bindings {
		if b.Queue == "" {
			return ErrQueueNameEmpty
		}
		if b.Processor == nil {
			return fmt.Errorf("listener: queue %s has no processor", b.Queue)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range l.bindings {
		b := b
		g.Go(func() error {
			l.consume(ctx, b)
			return nil
		})
	}
	return g.Wait()
}

func (l *Listener) consume(ctx context.Context, b Binding) {
	log := l.log.With(logger.Queue(b.Queue))
	log.Info("listening")
	defer log.Info("stopped listening")

	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}

		payload, ok, err := l.source.Pop(ctx, b.Queue, l.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			if l.onError != nil {
				l.onError(b.Queue, err)
			}
			delay := l.backoff.Backoff(failures)
			log.Warn("pop failed, backing off",
				logger.Err(err),
				logger.Int("attempt", failures),
				logger.Duration("delay", delay),
			)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}
		if failures > 0 {
			log.Info("queue recovered", logger.Int("failed_attempts", failures))
			failures = 0
		}
		if !ok {
			continue
		}

		b.Processor.Process(ctx, payload)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
