package interpreter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/depthchart-hub/depth-chart-hub/internal/application/command"
	"github.com/depthchart-hub/depth-chart-hub/internal/application/query"
	"github.com/depthchart-hub/depth-chart-hub/internal/domain/depthchart"
	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOME
// ══════════════════════════════════════════════════════════════════════════════

// Status classifies how a payload was handled.
type Status string

const (
	// StatusIgnored means the payload had no recognized type. Nothing was
	// written and nothing changed.
	StatusIgnored Status = "ignored"
	// StatusSucceeded means the command ran and a confirmation was written.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means a single diagnostic line was written.
	StatusFailed Status = "failed"
)

// Outcome describes one processed payload.
type Outcome struct {
	Sport    string
	Type     string // empty when the payload was ignored
	Status   Status
	Output   string // text written to the sink, without the trailing newline
	Err      error
	Payload  []byte
	Duration time.Duration
}

// Observer is notified after every processed payload. Observers run after
// the output line is written and cannot change it.
type Observer interface {
	Observe(ctx context.Context, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, outcome Outcome)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, outcome Outcome) {
	f(ctx, outcome)
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERPRETER
// ══════════════════════════════════════════════════════════════════════════════

// Interpreter processes payloads for one sport. Calls to Process are
// serialized, so a single Interpreter may be shared by several goroutines.
type Interpreter struct {
	sport     string
	out       io.Writer
	log       *logger.Logger
	observers []Observer

	addPlayer      *command.AddPlayerHandler
	addPosition    *command.AddPositionHandler
	removePosition *command.RemovePositionHandler
	getFull        *query.GetFullChartHandler
	getUnder       *query.GetPlayersUnderHandler

	mu sync.Mutex
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.log = l
		}
	}
}

// WithObserver registers an observer. Nil observers are skipped.
func WithObserver(o Observer) Option {
	return func(i *Interpreter) {
		if o != nil {
			i.observers = append(i.observers, o)
		}
	}
}

// New creates an Interpreter writing results to out. A nil out discards
// output.
func New(sport string, engine *depthchart.Engine, out io.Writer, opts ...Option) *Interpreter {
	if out == nil {
		out = io.Discard
	}
	i := &Interpreter{
		sport:          sport,
		out:            out,
		log:            logger.Nop(),
		addPlayer:      command.NewAddPlayerHandler(engine),
		addPosition:    command.NewAddPositionHandler(engine),
		removePosition: command.NewRemovePositionHandler(engine),
		getFull:        query.NewGetFullChartHandler(engine),
		getUnder:       query.NewGetPlayersUnderHandler(engine),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.With(logger.Component("interpreter"), logger.Sport(sport))
	return i
}

// Sport returns the sport the interpreter serves.
func (i *Interpreter) Sport() string {
	return i.sport
}

// Process handles one payload to completion. It never returns an error:
// failures are written to the sink as one "Error processing message: ..."
// line and reported in the Outcome.
func (i *Interpreter) Process(ctx context.Context, payload []byte) Outcome {
	start := time.Now()

	i.mu.Lock()
	outcome := i.process(ctx, payload)
	if outcome.Status != StatusIgnored {
		if _, err := io.WriteString(i.out, outcome.Output+"\n"); err != nil {
			i.log.Warn("failed to write output", logger.Err(err))
		}
	}
	i.mu.Unlock()

	outcome.Sport = i.sport
	outcome.Payload = payload
	outcome.Duration = time.Since(start)

	switch outcome.Status {
	case StatusFailed:
		i.log.Warn("command failed",
			logger.CommandType(outcome.Type),
			logger.Err(outcome.Err),
			logger.Latency(outcome.Duration),
		)
	case StatusSucceeded:
		i.log.Debug("command processed",
			logger.CommandType(outcome.Type),
			logger.Latency(outcome.Duration),
		)
	default:
		i.log.Debug("payload ignored")
	}

	for _, o := range i.observers {
		o.Observe(ctx, outcome)
	}
	return outcome
}

// Snapshot returns the current chart, serialized with Process.
func (i *Interpreter) Snapshot(ctx context.Context) depthchart.Chart {
	i.mu.Lock()
	defer i.mu.Unlock()

	chart, _ := i.getFull.Handle(ctx, query.GetFullChartQuery{})
	return chart
}

func (i *Interpreter) process(ctx context.Context, payload []byte) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			outcome.Status = StatusFailed
			outcome.Err = err
			outcome.Output = FormatError(err)
		}
	}()

	req, err := Decode(payload)
	if err != nil {
		return Outcome{Status: StatusFailed, Err: err, Output: FormatError(err)}
	}
	if req == nil {
		return Outcome{Status: StatusIgnored}
	}

	outcome.Type = req.Type()
	text, err := i.dispatch(ctx, req)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Output = FormatError(err)
		return outcome
	}
	outcome.Status = StatusSucceeded
	outcome.Output = text
	return outcome
}

// dispatch runs one request. Every Request implementation has a case.
func (i *Interpreter) dispatch(ctx context.Context, req Request) (string, error) {
	switch r := req.(type) {
	case AddPlayerRequest:
		res, err := i.addPlayer.Handle(ctx, command.AddPlayerCommand{Name: r.Name, PlayerID: r.PlayerID})
		if err != nil {
			return "", err
		}
		if r.PlayerID != nil && *r.PlayerID != int(res.Player.ID) {
			i.log.Debug("ignoring advisory player id",
				logger.Int("requested_id", *r.PlayerID),
				logger.PlayerID(int(res.Player.ID)),
			)
		}
		return formatAddedPlayer(r.Name, res.Player.ID), nil

	case AddRequest:
		_, err := i.addPosition.Handle(ctx, command.AddPositionCommand{Name: r.Name, Position: r.Position, Depth: r.Depth})
		if err != nil {
			return "", err
		}
		return formatAddedPosition(r.Name, r.Position, r.Depth), nil

	case RemoveRequest:
		_, err := i.removePosition.Handle(ctx, command.RemovePositionCommand{Name: r.Name, Position: r.Position})
		if err != nil {
			return "", err
		}
		return formatRemovedPosition(r.Name, r.Position), nil

	case GetFullRequest:
		chart, err := i.getFull.Handle(ctx, query.GetFullChartQuery{})
		if err != nil {
			return "", err
		}
		return FormatChart(chart), nil

	case GetUnderRequest:
		res, err := i.getUnder.Handle(ctx, query.GetPlayersUnderQuery{Name: r.Name, Position: r.Position})
		if err != nil {
			return "", err
		}
		return FormatPlayersUnder(r.Name, res.Position, res.Entries), nil

	default:
		return "", fmt.Errorf("unsupported request %T", req)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED SINKS
// ══════════════════════════════════════════════════════════════════════════════

// SyncWriter serializes writes to a sink shared by several interpreters.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w.
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

// Write implements io.Writer.
func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
