package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationState pairs a migration with when it was applied, if ever.
type MigrationState struct {
	Migration
	AppliedAt *time.Time
}

// journalMigrations is the journal schema, in order.
var journalMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_command_journal",
		// Payload is text because malformed payloads are journaled too.
		SQL: `
CREATE TABLE IF NOT EXISTS command_journal (
    id UUID PRIMARY KEY,
    sport VARCHAR(20) NOT NULL,
    command_type VARCHAR(20) NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL,
    payload TEXT NOT NULL,
    output TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT '',
    duration_us BIGINT NOT NULL DEFAULT 0,
    received_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('ignored', 'succeeded', 'failed'))
);

CREATE INDEX IF NOT EXISTS idx_command_journal_sport_received ON command_journal(sport, received_at DESC);
CREATE INDEX IF NOT EXISTS idx_command_journal_failed ON command_journal(received_at DESC) WHERE status = 'failed';
`,
	},
}

// migrationLock serializes workers that start at the same time against one
// database. The value is arbitrary but fixed.
const migrationLock int64 = 0x64637068756221

// Migrator applies journalMigrations and records them in schema_migrations.
type Migrator struct {
	conn *Connection
}

// NewMigrator creates a migrator for conn.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn}
}

// Migrate applies every pending migration, each in its own transaction, and
// returns how many it applied.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range journalMigrations {
		ran, err := m.apply(ctx, mig)
		if err != nil {
			return applied, fmt.Errorf("postgres: migration %03d %s: %w", mig.Version, mig.Name, err)
		}
		if ran {
			applied++
		}
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	ran := false
	err := pgx.BeginFunc(ctx, m.conn.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLock); err != nil {
			return err
		}

		var done bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, mig.Version,
		).Scan(&done)
		if err != nil || done {
			return err
		}

		if _, err := tx.Exec(ctx, mig.SQL); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name,
		); err != nil {
			return err
		}
		ran = true
		return nil
	})
	return ran, err
}

// Status lists every known migration with its applied time.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.conn.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("postgres: read schema_migrations: %w", err)
	}
	appliedAt := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      time.Time
		)
		if err := rows.Scan(&version, &at); err != nil {
			rows.Close()
			return nil, fmt.Errorf("postgres: scan schema_migrations: %w", err)
		}
		appliedAt[version] = at
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read schema_migrations: %w", err)
	}

	states := make([]MigrationState, len(journalMigrations))
	for i, mig := range journalMigrations {
		states[i].Migration = mig
		if at, ok := appliedAt[mig.Version]; ok {
			states[i].AppliedAt = &at
		}
	}
	return states, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("postgres: create schema_migrations: %w", err)
	}
	return nil
}
