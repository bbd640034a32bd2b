package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// created_at columns hold Unix milliseconds so both dialects compare and
// order them the same way.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                BIGSERIAL PRIMARY KEY,
		name              VARCHAR(255) NOT NULL,
		date              VARCHAR(10)  NOT NULL,
		total_tickets     INTEGER NOT NULL CHECK (total_tickets >= 0),
		available_tickets INTEGER NOT NULL CHECK (available_tickets >= 0 AND available_tickets <= total_tickets)
	)`,
	`CREATE TABLE IF NOT EXISTS pending_bookings (
		seq        BIGSERIAL PRIMARY KEY,
		token      VARCHAR(64)  NOT NULL UNIQUE,
		event_name VARCHAR(255) NOT NULL,
		tickets    INTEGER NOT NULL CHECK (tickets > 0),
		raw_text   TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS pending_bookings_created_at_idx ON pending_bookings (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    BIGINT NOT NULL
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		name              TEXT NOT NULL,
		date              TEXT NOT NULL,
		total_tickets     INTEGER NOT NULL CHECK (total_tickets >= 0),
		available_tickets INTEGER NOT NULL CHECK (available_tickets >= 0 AND available_tickets <= total_tickets)
	)`,
	`CREATE TABLE IF NOT EXISTS pending_bookings (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		token      TEXT NOT NULL UNIQUE,
		event_name TEXT NOT NULL,
		tickets    INTEGER NOT NULL CHECK (tickets > 0),
		raw_text   TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS pending_bookings_created_at_idx ON pending_bookings (created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
}

// InitialiseDB creates any missing tables. It is safe to run from every
// service at start-up.
func InitialiseDB(ctx context.Context, db *sqlx.DB) error {
	stmts := postgresSchema
	if DialectOf(db) == SQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initialise schema: %w", err)
		}
	}
	return nil
}
