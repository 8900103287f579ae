// Package postgres implements the optional PostgreSQL command journal.
// The journal is an append-only audit trail: it is never read back to rebuild
// depth charts, which live only in memory.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds the pool settings applied on top of DATABASE_URL.
type Config struct {
	URL            string
	MaxConns       int32
	ConnectTimeout time.Duration

	// ApplicationName shows up in pg_stat_activity.
	ApplicationName string
}

// DefaultConfig returns settings sized for one worker writing one journal
// row per command.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		MaxConns:        5,
		ConnectTimeout:  5 * time.Second,
		ApplicationName: "depth-chart-hub",
	}
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database URL: %w", err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	pc.MinConns = 1
	pc.MaxConnIdleTime = 10 * time.Minute
	if c.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = c.ConnectTimeout
	}
	if c.ApplicationName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = c.ApplicationName
	}
	return pc, nil
}

// Querier is the subset of the pool the journal needs. Tests substitute a
// fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Connection owns the journal's pool.
type Connection struct {
	pool *pgxpool.Pool
}

var _ Querier = (*Connection)(nil)

// NewConnection opens a pool and verifies it with a ping.
func NewConnection(ctx context.Context, cfg Config) (*Connection, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	c := &Connection{pool: pool}
	if err := c.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return c, nil
}

func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.pool.Exec(ctx, sql, args...)
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.pool.Query(ctx, sql, args...)
}

// Ping checks that a connection can be acquired and used.
func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close waits for in-flight queries and closes the pool.
func (c *Connection) Close() {
	c.pool.Close()
}

// isUniqueViolation reports a duplicate primary key, which Append treats as
// already written.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
