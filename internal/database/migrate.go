package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at boot. Statements are idempotent so restarting the
// service against an existing database is safe.
//
// entry_state is intentionally nullable: rows created before the column
// existed carry NULL and are normalized to 'available' on read.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id           UUID PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL,
	date         TIMESTAMPTZ NOT NULL,
	location     TEXT NOT NULL,
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	poster       TEXT,
	max_capacity INTEGER NOT NULL CHECK (max_capacity >= 1),
	price        NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
	organizer_id UUID NOT NULL REFERENCES users(id),
	is_active    BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS registrations (
	id             UUID PRIMARY KEY,
	user_id        UUID NOT NULL REFERENCES users(id),
	event_id       UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	token          TEXT NOT NULL,
	code           TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	payment_proof  TEXT,
	entry_state    TEXT,
	has_entered    BOOLEAN NOT NULL DEFAULT FALSE,
	entered_at     TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	CONSTRAINT registrations_token_key      UNIQUE (token),
	CONSTRAINT registrations_code_key       UNIQUE (code),
	CONSTRAINT registrations_user_event_key UNIQUE (user_id, event_id)
);

CREATE INDEX IF NOT EXISTS idx_registrations_event ON registrations (event_id);
CREATE INDEX IF NOT EXISTS idx_registrations_user  ON registrations (user_id);
CREATE INDEX IF NOT EXISTS idx_events_date         ON events (date);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
