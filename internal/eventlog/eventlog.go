// Package eventlog records track-session lifecycle events to Postgres for
// offline diagnostics: goals received, intercepts computed, activity
// groups completed or aborted, calibration applied. It holds no axis
// offsets or other state that would need to survive a restart — only an
// append-only history of what happened.
package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a Postgres connection pool sized for a single daemon process's
// event-log writes.
type DB struct {
	*sql.DB
}

// Open connects to Postgres using dsn and verifies connectivity.
func Open(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("eventlog: ping: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("eventlog: close: %w", err)
	}
	return nil
}

// InitSchema creates the events table if it does not already exist. Safe
// to call on every startup.
func (db *DB) InitSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS track_events (
	id           BIGSERIAL PRIMARY KEY,
	activity_id  TEXT NOT NULL,
	kind         TEXT NOT NULL,
	target_name  TEXT,
	detail       TEXT,
	occurred_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS track_events_activity_id_idx ON track_events (activity_id);
CREATE INDEX IF NOT EXISTS track_events_occurred_at_idx ON track_events (occurred_at);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("eventlog: init schema: %w", err)
	}
	return nil
}
