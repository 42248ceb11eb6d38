// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

DATABASE_TYPE selects the database/sql driver:

	sqlite    modernc.org/sqlite (pure Go, default)
	postgres  github.com/lib/pq
	pgx       github.com/jackc/pgx/v5/stdlib

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The statements only use SQL understood by both PostgreSQL and SQLite, so
timestamps are stored as RFC3339 text.

# Tables

	elections 1──* voters      UNIQUE (election_id, voter_id)
	elections 1──* candidates
	elections 1──* votes       UNIQUE (election_id, voter_id)
	audit_log                  append-only

Child rows are removed by the store when an election is deleted; the
foreign keys are declared for PostgreSQL, where they are always enforced.
*/
package db
