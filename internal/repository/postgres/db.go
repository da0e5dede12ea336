package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/therapy-scheduler/internal/config"
)

func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates the scheduling tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS therapists (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		gender      TEXT NOT NULL CHECK (gender IN ('male', 'female')),
		email       TEXT NOT NULL DEFAULT '',
		sort_order  INTEGER NOT NULL DEFAULT 0,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		sort_order  INTEGER NOT NULL DEFAULT 0,
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS availability_slots (
		resource_kind TEXT NOT NULL CHECK (resource_kind IN ('room', 'therapist')),
		resource_id   TEXT NOT NULL,
		date          DATE NOT NULL,
		slot          TEXT NOT NULL,
		PRIMARY KEY (resource_kind, resource_id, date, slot)
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id            UUID PRIMARY KEY,
		client_id     TEXT NOT NULL,
		client_email  TEXT NOT NULL DEFAULT '',
		room_id       TEXT NOT NULL REFERENCES rooms(id),
		therapist_ids TEXT[] NOT NULL,
		date          DATE NOT NULL,
		slot          TEXT NOT NULL,
		duration_days INTEGER NOT NULL DEFAULT 1,
		tab           TEXT NOT NULL DEFAULT 'therapy',
		status        TEXT NOT NULL DEFAULT 'scheduled',
		cancel_reason TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE appointments ADD COLUMN IF NOT EXISTS client_email TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS appointments_date_idx ON appointments (date)`,
	`CREATE INDEX IF NOT EXISTS appointments_client_idx ON appointments (client_id)`,
}
