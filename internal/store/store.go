// Package store persists pipeline runs: one row per run with its
// config snapshot and summary counters, plus the per-day alert view
// and merged events keyed by run id. Runs are append-only; a re-run
// writes a new run id rather than mutating history.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrisense/agrisense/pkg/database"
	"github.com/agrisense/agrisense/pkg/logger"
)

// Store wraps the connection pool with alert persistence.
type Store struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// New creates a store on an established database connection.
func New(db *database.DB, log *logger.Logger) *Store {
	return &Store{pool: db.Pool, logger: log}
}

const schema = `
CREATE SCHEMA IF NOT EXISTS alerts;

CREATE TABLE IF NOT EXISTS alerts.runs (
	id               BIGSERIAL PRIMARY KEY,
	strategy_id      TEXT NOT NULL,
	config_hash      TEXT NOT NULL,
	config_yaml      TEXT NOT NULL,
	total_days       INT NOT NULL,
	qc_ok_days       INT NOT NULL,
	gating_ok_days   INT NOT NULL,
	raw_alert_days   INT NOT NULL,
	gated_alert_days INT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS runs_strategy_idx
	ON alerts.runs (strategy_id, created_at DESC);

CREATE TABLE IF NOT EXISTS alerts.days (
	run_id           BIGINT NOT NULL REFERENCES alerts.runs(id) ON DELETE CASCADE,
	date             DATE NOT NULL,
	skip_reason      TEXT NOT NULL,
	canopy_ready     BOOLEAN NOT NULL,
	gating_ok        BOOLEAN NOT NULL,
	raw_categories   TEXT[] NOT NULL,
	gated_categories TEXT[] NOT NULL,
	label            TEXT NOT NULL DEFAULT '',
	reasons          JSONB NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (run_id, date)
);

CREATE TABLE IF NOT EXISTS alerts.events (
	id            BIGSERIAL PRIMARY KEY,
	run_id        BIGINT NOT NULL REFERENCES alerts.runs(id) ON DELETE CASCADE,
	event_type    TEXT NOT NULL,
	categories    TEXT[] NOT NULL,
	start_date    DATE NOT NULL,
	end_date      DATE NOT NULL,
	duration_days INT NOT NULL,
	metric_name   TEXT NOT NULL DEFAULT '',
	peak_value    DOUBLE PRECISION,
	peak_date     DATE,
	reason_union  TEXT[] NOT NULL,
	member_dates  DATE[] NOT NULL
);
CREATE INDEX IF NOT EXISTS events_run_idx ON alerts.events (run_id, start_date);
`

// EnsureSchema creates the alerts schema and tables when absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema failed: %w", err)
	}
	s.logger.Debug("Alert schema ensured")
	return nil
}
