package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/depthchart-hub/depth-chart-hub/internal/interface/interpreter"
	"github.com/depthchart-hub/depth-chart-hub/pkg/circuitbreaker"
	"github.com/depthchart-hub/depth-chart-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOURNAL ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// JournalEntry is one journaled payload.
type JournalEntry struct {
	ID          uuid.UUID
	Sport       string
	CommandType string
	Status      string
	Payload     string
	Output      string
	Error       string
	Duration    time.Duration
	ReceivedAt  time.Time
}

// EntryFromOutcome builds a journal entry for a processed payload.
func EntryFromOutcome(o interpreter.Outcome, receivedAt time.Time) JournalEntry {
	e := JournalEntry{
		ID:          uuid.New(),
		Sport:       o.Sport,
		CommandType: o.Type,
		Status:      string(o.Status),
		Payload:     string(o.Payload),
		Output:      o.Output,
		Duration:    o.Duration,
		ReceivedAt:  receivedAt.UTC(),
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	return e
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// JournalRepository appends processed payloads to command_journal and
// implements interpreter.Observer.
type JournalRepository struct {
	db      Querier
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	now     func() time.Time
	log     *logger.Logger
}

var _ interpreter.Observer = (*JournalRepository)(nil)

// JournalOption configures a JournalRepository.
type JournalOption func(*JournalRepository)

// WithBreaker guards writes with a circuit breaker.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) JournalOption {
	return func(r *JournalRepository) {
		r.breaker = cb
	}
}

// WithWriteTimeout bounds each insert. Default: 5s.
func WithWriteTimeout(d time.Duration) JournalOption {
	return func(r *JournalRepository) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithJournalLogger sets the logger.
func WithJournalLogger(l *logger.Logger) JournalOption {
	return func(r *JournalRepository) {
		if l != nil {
			r.log = l
		}
	}
}

// NewJournalRepository creates a journal writing through db.
func NewJournalRepository(db Querier, opts ...JournalOption) *JournalRepository {
	r := &JournalRepository{
		db:      db,
		timeout: 5 * time.Second,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(logger.Component("journal"))
	return r
}

// Append inserts one entry. Re-inserting an id that already exists is not an
// error.
func (r *JournalRepository) Append(ctx context.Context, e JournalEntry) error {
	insert := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		_, err := r.db.Exec(ctx, `
			INSERT INTO command_journal
				(id, sport, command_type, status, payload, output, error, duration_us, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			e.ID, e.Sport, e.CommandType, e.Status, e.Payload, e.Output, e.Error,
			e.Duration.Microseconds(), e.ReceivedAt,
		)
		if err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("insert journal entry: %w", err)
		}
		return nil
	}

	if r.breaker == nil {
		return insert(ctx)
	}
	return r.breaker.Execute(ctx, insert)
}

// Observe journals a processed payload. Failures are logged, never returned:
// the journal must not affect command handling.
func (r *JournalRepository) Observe(ctx context.Context, o interpreter.Outcome) {
	e := EntryFromOutcome(o, r.now())

	// The listener context is cancelled on shutdown; the last entries are
	// still worth writing.
	err := r.Append(context.WithoutCancel(ctx), e)
	switch {
	case err == nil:
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		r.log.Debug("journal write skipped", logger.Sport(o.Sport), logger.Err(err))
	default:
		r.log.Warn("journal write failed",
			logger.Sport(o.Sport),
			logger.CommandType(o.Type),
			logger.Err(err),
		)
	}
}

// Prune deletes entries received before the cutoff and returns how many were
// removed.
func (r *JournalRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM command_journal WHERE received_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Recent limits.
const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 500
)

// Recent returns the newest entries for a sport, newest first. A limit of
// zero or less means DefaultRecentLimit; larger limits are clamped to
// MaxRecentLimit.
func (r *JournalRepository) Recent(ctx context.Context, sport string, limit int) ([]JournalEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, sport, command_type, status, payload, output, error, duration_us, received_at
		FROM command_journal
		WHERE sport = $1
		ORDER BY received_at DESC
		LIMIT $2
	`, sport, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			e          JournalEntry
			durationUS int64
		)
		if err := rows.Scan(
			&e.ID, &e.Sport, &e.CommandType, &e.Status, &e.Payload,
			&e.Output, &e.Error, &durationUS, &e.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
